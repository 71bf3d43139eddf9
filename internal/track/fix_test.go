package track

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"time,lat,lon,sog_kn",
		"2024-03-01T12:00:00Z,36.8000,-25.5000,12.3",
		"2024-03-01T12:10:00Z,36.8100,-25.4900,",
		"2024-03-01T12:20:00Z,36.8200,-25.4800,11.9",
	}, "\n")

	track, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, track, 3)

	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), track[0].Time)
	assert.Equal(t, 36.8, track[0].Lat)
	assert.Equal(t, -25.5, track[0].Lon)
	require.NotNil(t, track[0].SpeedKn)
	assert.Equal(t, 12.3, *track[0].SpeedKn)

	// empty speed cell stays nil
	assert.Nil(t, track[1].SpeedKn)
}

func TestReadCSV_HeaderVariants(t *testing.T) {
	input := "Time, LAT ,Lon\n2024-03-01 12:00:00,1.5,2.5\n"
	track, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, track, 1)
	assert.Equal(t, 1.5, track[0].Lat)
	assert.Nil(t, track[0].SpeedKn)
}

func TestReadCSV_MissingColumns(t *testing.T) {
	tests := []struct {
		name        string
		header      string
		wantMissing []string
	}{
		{"no coordinates", "time,sog_kn", []string{"lat", "lon"}},
		{"no longitude", "time,lat", []string{"lon"}},
		{"no time", "lat,lon", []string{"time"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.header + "\n"))
			var missing *MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.wantMissing, missing.Fields)
		})
	}
}

func TestReadCSV_BadValues(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"bad timestamp", "yesterday,1,2,3"},
		{"bad latitude", "2024-03-01T12:00:00Z,north,2,3"},
		{"bad speed", "2024-03-01T12:00:00Z,1,2,fast"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := "time,lat,lon,sog_kn\n" + tt.row + "\n"
			_, err := ReadCSV(strings.NewReader(input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestTrackCenter(t *testing.T) {
	track := Track{
		{Lat: 10, Lon: 20},
		{Lat: 20, Lon: 40},
	}
	lat, lon := track.Center()
	assert.Equal(t, 15.0, lat)
	assert.Equal(t, 30.0, lon)

	lat, lon = Track{}.Center()
	assert.Zero(t, lat)
	assert.Zero(t, lon)
}

func TestGapScenario(t *testing.T) {
	// a vessel reporting every 10 minutes goes dark for two hours
	input := strings.Join([]string{
		"time,lat,lon,sog_kn",
		"2024-03-01T12:00:00Z,36.80,-25.50,12.1",
		"2024-03-01T12:10:00Z,36.81,-25.49,12.3",
		"2024-03-01T12:20:00Z,36.82,-25.48,12.3",
		"2024-03-01T14:20:00Z,36.95,-25.30,11.8",
		"2024-03-01T14:30:00Z,36.96,-25.29,11.7",
	}, "\n")

	track, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	gap, err := FindFirstGap(track, 30*time.Minute)
	require.NoError(t, err)
	require.NotNil(t, gap)
	assert.Equal(t, 2, gap.Before)
	assert.Equal(t, 3, gap.After)
	assert.Equal(t, 2.0, gap.Hours())

	rings, err := ReachEstimate(gap, ReachConfig{})
	require.NoError(t, err)
	// pre-gap SOG was 12.3 kn: 12.3 x 2 x 1852
	assert.InDelta(t, 45559.2, rings[0].RadiusMeters, 1e-6)
	assert.InDelta(t, 81488.0, rings[1].RadiusMeters, 1e-6)
	assert.Equal(t, 36.82, rings[0].CenterLat)
	assert.Equal(t, -25.48, rings[0].CenterLon)
}
