// Package storage persists vessel fixes in SQLite or Postgres via GORM.
package storage

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oceantrace/darkmap/internal/track"
)

// FixRecord is the persisted form of one positional fix.
type FixRecord struct {
	ID       uint      `gorm:"primarykey"`
	VesselID string    `gorm:"index:idx_vessel_time"`
	Time     time.Time `gorm:"index:idx_vessel_time"`
	Lat      float64
	Lon      float64
	SpeedKn  *float64
	// Extra carries report attributes the pipeline does not interpret
	// (heading, nav status, source feed).
	Extra datatypes.JSON
}

// Manager handles database connections and track persistence.
type Manager struct {
	DB      *gorm.DB
	IsLocal bool
	Logger  zerolog.Logger
}

// NewManager creates a new storage manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{Logger: log}
}

// Connect establishes a database connection, falling back to SQLite if
// Postgres fails.
func (m *Manager) Connect() error {
	var err error

	m.DB, err = m.postgresDB()
	if err == nil {
		if sqlDB, derr := m.DB.DB(); derr == nil && sqlDB.Ping() == nil {
			m.Logger.Info().Msg("Connected to Postgres")
			return nil
		}
	}

	m.Logger.Warn().Msg("Postgres unavailable, using local SQLite")
	m.IsLocal = true
	m.DB, err = m.sqliteDB(viper.GetString("db.sqlitePath"))
	if err != nil {
		return fmt.Errorf("failed to get local SQLite DB: %s", err)
	}
	return nil
}

func (m *Manager) postgresDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)

	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        10000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

func (m *Manager) sqliteDB(path string) (*gorm.DB, error) {
	if path == "" {
		path = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        2000,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// set PRAGMAS
	pragmas := []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %s", err)
		}
	}
	return db, nil
}

// Setup migrates the schema.
func (m *Manager) Setup() error {
	if err := m.DB.AutoMigrate(&FixRecord{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %s", err)
	}
	return nil
}

// SaveTrack persists a track under the given vessel ID.
func (m *Manager) SaveTrack(vesselID string, t track.Track) error {
	if len(t) == 0 {
		return nil
	}
	records := make([]FixRecord, 0, len(t))
	for _, fix := range t {
		records = append(records, FixRecord{
			VesselID: vesselID,
			Time:     fix.Time,
			Lat:      fix.Lat,
			Lon:      fix.Lon,
			SpeedKn:  fix.SpeedKn,
		})
	}
	if err := m.DB.Create(&records).Error; err != nil {
		return fmt.Errorf("saving track for %s: %w", vesselID, err)
	}
	return nil
}

// LoadTrack returns the vessel's fixes in ascending time order.
func (m *Manager) LoadTrack(vesselID string) (track.Track, error) {
	var records []FixRecord
	err := m.DB.Model(&FixRecord{}).
		Where("vessel_id = ?", vesselID).
		Order("time asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("loading track for %s: %w", vesselID, err)
	}
	t := make(track.Track, 0, len(records))
	for _, r := range records {
		t = append(t, track.Fix{Time: r.Time, Lat: r.Lat, Lon: r.Lon, SpeedKn: r.SpeedKn})
	}
	return t, nil
}
