package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/oceantrace/darkmap/internal/config"
	"github.com/oceantrace/darkmap/internal/logging"
	"github.com/oceantrace/darkmap/internal/telemetry"
)

// Version can be set at build time via ldflags.
var Version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch strings.ToLower(args[0]) {
	case "generate":
		if err := runGenerate(args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "fetch":
		if err := runFetch(args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "publish":
		if err := runPublish(args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
	case "version":
		fmt.Println("darkmap", Version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `darkmap - vessel dark-zone map generator

Usage:
  darkmap generate [flags]   build a map document from a track
  darkmap fetch [flags]      download offline JS/CSS assets
  darkmap publish [flags]    upload a document to the ops frontend
  darkmap version            print the version

Run a subcommand with -h for its flags.
`)
}

// setup loads config (defaults survive a missing file) and builds the logger.
func setup(configDir string) zerolog.Logger {
	err := config.Load(configDir)
	logger := logging.New(viper.GetString("logLevel"))
	if err != nil {
		logger.Debug().Err(err).Msg("No config file, using defaults")
	}
	return logger
}

// setupTelemetry builds the metrics provider from the metrics.* config block.
// Disabled metrics yield a provider whose Shutdown is a no-op.
func setupTelemetry(logger zerolog.Logger) (*telemetry.Provider, error) {
	cfg := telemetry.Config{
		Enabled:     viper.GetBool("metrics.enabled"),
		ServiceName: "darkmap",
		Endpoint:    viper.GetString("metrics.endpoint"),
		Insecure:    viper.GetBool("metrics.insecure"),
	}
	if cfg.Enabled {
		if path := viper.GetString("metrics.file"); path != "" {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return nil, fmt.Errorf("opening metrics file: %w", err)
			}
			cfg.Writer = f
		}
		logger.Debug().Str("endpoint", cfg.Endpoint).Msg("Metrics export enabled")
	}
	return telemetry.New(cfg)
}
