// Package influx optionally records one measurement per document-generation
// run to InfluxDB.
package influx

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// RunStats summarizes one pipeline run.
type RunStats struct {
	VesselID   string
	GapHours   float64
	Rings      int
	Fixes      int
	StrictPass bool
	Duration   time.Duration
}

// Manager handles the InfluxDB connection and run-stat writes.
type Manager struct {
	Client  influxdb2.Client
	Writer  influxdb2_api.WriteAPIBlocking
	IsValid bool
	Logger  zerolog.Logger
}

// NewManager creates a new InfluxDB manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{Logger: log}
}

// Connect establishes a connection to InfluxDB. Returns an error when the
// sink is disabled or unreachable; callers treat that as non-fatal.
func (m *Manager) Connect() error {
	if !viper.GetBool("influx.enabled") {
		return errors.New("influx.enabled is false")
	}

	m.Client = influxdb2.NewClient(
		fmt.Sprintf(
			"%s://%s:%s",
			viper.GetString("influx.protocol"),
			viper.GetString("influx.host"),
			viper.GetString("influx.port"),
		),
		viper.GetString("influx.token"),
	)

	running, err := m.Client.Ping(context.Background())
	if err != nil || !running {
		return fmt.Errorf("influx ping failed: %v", err)
	}

	m.Writer = m.Client.WriteAPIBlocking(
		viper.GetString("influx.org"),
		viper.GetString("influx.bucket"),
	)
	m.IsValid = true
	m.Logger.Info().Msg("InfluxDB client initialized")
	return nil
}

// WriteRun records one run measurement. A no-op when the manager never
// connected.
func (m *Manager) WriteRun(ctx context.Context, stats RunStats) error {
	if !m.IsValid {
		return nil
	}
	point := influxdb2.NewPoint(
		"darkmap_run",
		map[string]string{"vessel": stats.VesselID},
		map[string]any{
			"gap_hours":   stats.GapHours,
			"rings":       stats.Rings,
			"fixes":       stats.Fixes,
			"strict_pass": stats.StrictPass,
			"duration_ms": stats.Duration.Milliseconds(),
		},
		time.Now(),
	)
	if err := m.Writer.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("writing run stats: %w", err)
	}
	return nil
}

// Close shuts the client down.
func (m *Manager) Close() {
	if m.Client != nil {
		m.Client.Close()
	}
}
