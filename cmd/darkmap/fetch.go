package main

import (
	"flag"
	"fmt"

	"github.com/spf13/viper"

	"github.com/oceantrace/darkmap/internal/assets"
)

func runFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	configDir := fs.String("config", ".", "directory containing darkmap.cfg.json")
	dir := fs.String("dir", "", "destination directory (default: assets.dir from config)")
	withTime := fs.Bool("with-time", false, "also fetch the TimeDimension bundle")
	withAntPath := fs.Bool("with-antpath", false, "also fetch the ant-path plugin")
	force := fs.Bool("force", false, "re-download files that already exist")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := setup(*configDir)
	dest := *dir
	if dest == "" {
		dest = viper.GetString("assets.dir")
	}

	fetcher := assets.NewFetcher(logger)
	plan := assets.FetchPlan(*withTime, *withAntPath)
	failures := fetcher.FetchAll(dest, plan, *force)
	if len(failures) == 0 {
		logger.Info().Int("files", len(plan)).Str("dir", dest).Msg("Assets ready")
		return nil
	}
	for name, err := range failures {
		logger.Error().Err(err).Str("file", name).Msg("Fetch failed")
	}
	return fmt.Errorf("%d of %d assets failed to fetch", len(failures), len(plan))
}
