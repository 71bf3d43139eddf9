package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from darkmap.cfg.json in configDir and sets
// default values for every key the pipeline reads.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("tiles.url", "http://127.0.0.1:8080/{z}/{x}/{y}.png")
	viper.SetDefault("tiles.fallback", "http://127.0.0.1:8080/{z}/{x}/{y}.png")

	viper.SetDefault("gap.threshold", "30m")
	viper.SetDefault("gap.speedCapKn", 22.0)
	viper.SetDefault("gap.ringSegments", 256)

	viper.SetDefault("assets.dir", "./assets")
	viper.SetDefault("assets.mode", "reference")
	viper.SetDefault("assets.strict", false)

	viper.SetDefault("db.enabled", false)
	viper.SetDefault("db.sqlitePath", "./darkmap.db")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "darkmap")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "darkmap")
	viper.SetDefault("influx.bucket", "darkmap_runs")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.file", "./darkmap-metrics.json")
	viper.SetDefault("metrics.endpoint", "")
	viper.SetDefault("metrics.insecure", false)

	viper.SetDefault("publish.url", "")
	viper.SetDefault("publish.apiKey", "")

	viper.SetConfigName("darkmap.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GapThreshold returns the configured gap threshold duration.
func GapThreshold() (time.Duration, error) {
	raw := viper.GetString("gap.threshold")
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid gap.threshold %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("gap.threshold must be positive, got %q", raw)
	}
	return d, nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}
