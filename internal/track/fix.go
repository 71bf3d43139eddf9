// Package track holds the vessel track model: positional fixes, reporting-gap
// detection, and reachability estimation for the dark zone between two fixes.
package track

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnordered is returned when an operation requires a time-ascending track
// but the input is out of order.
var ErrUnordered = errors.New("track fixes are not in non-decreasing time order")

// MissingFieldError reports required input fields that were absent.
// Coordinates are never silently defaulted.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field(s): %s", strings.Join(e.Fields, ", "))
}

// Fix is a single timestamped position report. SpeedKn is the speed over
// ground in knots, nil when the report carried none.
type Fix struct {
	Time    time.Time
	Lat     float64
	Lon     float64
	SpeedKn *float64
}

// Track is a time-ascending sequence of fixes.
type Track []Fix

// Sorted reports whether the track is in non-decreasing time order.
func (t Track) Sorted() bool {
	for i := 1; i < len(t); i++ {
		if t[i].Time.Before(t[i-1].Time) {
			return false
		}
	}
	return true
}

// Center returns the mean position of the track's fixes, used to center a
// map when the caller gives no explicit center. Zero-length tracks map to
// (0, 0).
func (t Track) Center() (lat, lon float64) {
	if len(t) == 0 {
		return 0, 0
	}
	for _, f := range t {
		lat += f.Lat
		lon += f.Lon
	}
	n := float64(len(t))
	return lat / n, lon / n
}

// SortFixes sorts a track into non-decreasing time order in place.
func SortFixes(t Track) {
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].Time.Before(t[j].Time)
	})
}

// csv column names accepted by ReadCSV
const (
	colTime  = "time"
	colLat   = "lat"
	colLon   = "lon"
	colSpeed = "sog_kn"
)

// timeLayouts are the timestamp formats accepted by ReadCSV, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// ReadCSV reads a track from CSV with a header row. Required columns: time,
// lat, lon. Optional: sog_kn. Returns a MissingFieldError when a required
// column is absent.
func ReadCSV(r io.Reader) (Track, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, required := range []string{colTime, colLat, colLon} {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{Fields: missing}
	}

	var t Track
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}

		ts, err := parseTime(record[cols[colTime]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(record[cols[colLat]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid lat: %w", line, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[cols[colLon]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid lon: %w", line, err)
		}

		fix := Fix{Time: ts, Lat: lat, Lon: lon}
		if idx, ok := cols[colSpeed]; ok && idx < len(record) {
			raw := strings.TrimSpace(record[idx])
			if raw != "" {
				kn, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid sog_kn: %w", line, err)
				}
				fix.SpeedKn = &kn
			}
		}
		t = append(t, fix)
	}
	return t, nil
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
