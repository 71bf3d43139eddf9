package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceantrace/darkmap/internal/track"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(zerolog.Nop())
	db, err := m.sqliteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	m.DB = db
	m.IsLocal = true
	require.NoError(t, m.Setup())
	return m
}

func TestSaveAndLoadTrack(t *testing.T) {
	m := newTestManager(t)

	sog := 12.3
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	in := track.Track{
		{Time: base, Lat: 36.80, Lon: -25.50, SpeedKn: &sog},
		{Time: base.Add(10 * time.Minute), Lat: 36.81, Lon: -25.49},
	}
	require.NoError(t, m.SaveTrack("mmsi:123", in))

	out, err := m.LoadTrack("mmsi:123")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 36.80, out[0].Lat)
	require.NotNil(t, out[0].SpeedKn)
	assert.Equal(t, 12.3, *out[0].SpeedKn)
	assert.Nil(t, out[1].SpeedKn)
	assert.True(t, out[0].Time.Equal(base))
}

func TestLoadTrack_OrdersByTime(t *testing.T) {
	m := newTestManager(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	in := track.Track{
		{Time: base.Add(20 * time.Minute), Lat: 3, Lon: 3},
		{Time: base, Lat: 1, Lon: 1},
		{Time: base.Add(10 * time.Minute), Lat: 2, Lon: 2},
	}
	require.NoError(t, m.SaveTrack("v", in))

	out, err := m.LoadTrack("v")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.True(t, out.Sorted())
	assert.Equal(t, 1.0, out[0].Lat)
	assert.Equal(t, 3.0, out[2].Lat)
}

func TestLoadTrack_FiltersByVessel(t *testing.T) {
	m := newTestManager(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, m.SaveTrack("a", track.Track{{Time: base, Lat: 1, Lon: 1}}))
	require.NoError(t, m.SaveTrack("b", track.Track{{Time: base, Lat: 2, Lon: 2}}))

	out, err := m.LoadTrack("a")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0].Lat)

	out, err = m.LoadTrack("missing")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSaveTrack_EmptyIsNoop(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.SaveTrack("v", nil))
	out, err := m.LoadTrack("v")
	require.NoError(t, err)
	assert.Empty(t, out)
}
