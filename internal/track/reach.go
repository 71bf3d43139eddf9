package track

import (
	"fmt"
	"time"

	"github.com/oceantrace/darkmap/internal/geo"
)

// MetersPerNauticalMile converts nautical miles to meters exactly.
const MetersPerNauticalMile = 1852.0

// DefaultSpeedCapKn is the default worst-case operational speed in knots.
const DefaultSpeedCapKn = 22.0

// DefaultRingSegments is the default vertex count for reachability rings.
const DefaultRingSegments = 256

// Speed assumptions attached to reachability rings.
const (
	AssumptionConservative = "conservative"
	AssumptionMaximum      = "maximum"
)

// ReachabilityRing is a closed geodesic ring bounding where the vessel could
// have traveled during a gap, under one speed assumption. Vertices are in
// [lon, lat] order with the first vertex repeated as the last.
type ReachabilityRing struct {
	CenterLat    float64
	CenterLon    float64
	RadiusMeters float64
	SpeedKn      float64
	Assumption   string
	Vertices     [][2]float64
}

// ReachConfig controls reachability estimation.
type ReachConfig struct {
	// SpeedCapKn is the worst-case operational speed. Zero selects
	// DefaultSpeedCapKn.
	SpeedCapKn float64
	// Segments is the ring vertex count. Zero selects DefaultRingSegments.
	Segments int
}

// RadiusMeters converts a speed held for a duration into meters traveled:
// knots x hours x 1852. No other unit coercion happens anywhere in the
// reachability path.
func RadiusMeters(speedKn float64, elapsed time.Duration) float64 {
	return speedKn * elapsed.Hours() * MetersPerNauticalMile
}

// ReachEstimate produces the two reachability rings for a gap, both centered
// on the fix immediately preceding it: a conservative ring assuming the last
// known speed persisted, and a maximum ring assuming the operational speed
// cap. When the pre-gap fix carries no speed, the conservative ring falls
// back to the cap and the two rings coincide.
func ReachEstimate(gap *Gap, cfg ReachConfig) ([]ReachabilityRing, error) {
	if gap == nil {
		return nil, fmt.Errorf("reach estimate requires a gap")
	}
	speedCap := cfg.SpeedCapKn
	if speedCap == 0 {
		speedCap = DefaultSpeedCapKn
	}
	segments := cfg.Segments
	if segments == 0 {
		segments = DefaultRingSegments
	}

	conservative := speedCap
	if gap.From.SpeedKn != nil {
		conservative = *gap.From.SpeedKn
	}

	rings := make([]ReachabilityRing, 0, 2)
	for _, spec := range []struct {
		assumption string
		speedKn    float64
	}{
		{AssumptionConservative, conservative},
		{AssumptionMaximum, speedCap},
	} {
		radius := RadiusMeters(spec.speedKn, gap.Elapsed)
		vertices, err := geo.GeodesicRing(gap.From.Lat, gap.From.Lon, radius, segments)
		if err != nil {
			return nil, fmt.Errorf("building %s ring: %w", spec.assumption, err)
		}
		rings = append(rings, ReachabilityRing{
			CenterLat:    gap.From.Lat,
			CenterLon:    gap.From.Lon,
			RadiusMeters: radius,
			SpeedKn:      spec.speedKn,
			Assumption:   spec.assumption,
			Vertices:     vertices,
		})
	}
	return rings, nil
}
