package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/oceantrace/darkmap/internal/capability"
)

// WGS84 ellipsoid parameters.
const (
	semiMajorAxis = 6378137.0
	flattening    = 1.0 / 298.257223563
)

// ErrSegmentCount is returned when a ring is requested with fewer than 3 segments.
var ErrSegmentCount = errors.New("ring segment count must be at least 3")

// ErrNegativeRadius is returned when a ring is requested with a negative radius.
var ErrNegativeRadius = errors.New("ring radius must not be negative")

// ForwardFunc solves the direct geodesic problem: starting point in degrees,
// initial azimuth in degrees clockwise from north, distance in meters.
// Returns the destination latitude and longitude in degrees.
type ForwardFunc func(lat, lon, azimuthDeg, distanceM float64) (lat2, lon2 float64)

func init() {
	capability.Register(capability.Geodesic, ForwardFunc(vincentyDirect))
}

// GeodesicRing computes a closed ring of points all at great-circle distance
// radiusM from the center, on the WGS84 ellipsoid. Vertices are in [lon, lat]
// order, starting at bearing 0 (north) and proceeding clockwise, with the
// first vertex repeated as the last; the result has exactly segments+1
// vertices.
//
// segments below 3 and negative radii are rejected. A zero radius is valid
// and yields a degenerate ring with every vertex at the center.
func GeodesicRing(lat, lon, radiusM float64, segments int) ([][2]float64, error) {
	if segments < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrSegmentCount, segments)
	}
	if radiusM < 0 {
		return nil, fmt.Errorf("%w: got %f", ErrNegativeRadius, radiusM)
	}

	provider, err := capability.Lookup(capability.Geodesic)
	if err != nil {
		return nil, err
	}
	fwd, ok := provider.(ForwardFunc)
	if !ok {
		return nil, fmt.Errorf("geodesic capability has unexpected type %T", provider)
	}

	step := 360.0 / float64(segments)
	ring := make([][2]float64, 0, segments+1)
	azimuth := 0.0
	for i := 0; i < segments; i++ {
		lat2, lon2 := fwd(lat, lon, azimuth, radiusM)
		ring = append(ring, [2]float64{lon2, lat2})
		azimuth += step
	}
	ring = append(ring, ring[0])
	return ring, nil
}

// vincentyDirect solves the direct geodesic problem on the WGS84 ellipsoid
// using Vincenty's formulae. Converges for all practical range-ring radii.
func vincentyDirect(lat, lon, azimuthDeg, distanceM float64) (float64, float64) {
	a := semiMajorAxis
	f := flattening
	b := a * (1 - f)

	phi1 := lat * math.Pi / 180
	alpha1 := azimuthDeg * math.Pi / 180
	sinAlpha1, cosAlpha1 := math.Sincos(alpha1)

	tanU1 := (1 - f) * math.Tan(phi1)
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1

	sigma1 := math.Atan2(tanU1, cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - sinAlpha*sinAlpha
	uSq := cosSqAlpha * (a*a - b*b) / (b * b)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	sigma := distanceM / (b * bigA)
	var sinSigma, cosSigma, cos2SigmaM float64
	for i := 0; i < 100; i++ {
		cos2SigmaM = math.Cos(2*sigma1 + sigma)
		sinSigma, cosSigma = math.Sincos(sigma)
		deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*
			(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
				bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
		next := distanceM/(b*bigA) + deltaSigma
		if math.Abs(next-sigma) < 1e-12 {
			sigma = next
			break
		}
		sigma = next
	}
	cos2SigmaM = math.Cos(2*sigma1 + sigma)
	sinSigma, cosSigma = math.Sincos(sigma)

	tmp := sinU1*sinSigma - cosU1*cosSigma*cosAlpha1
	phi2 := math.Atan2(
		sinU1*cosSigma+cosU1*sinSigma*cosAlpha1,
		(1-f)*math.Sqrt(sinAlpha*sinAlpha+tmp*tmp),
	)
	lambda := math.Atan2(sinSigma*sinAlpha1, cosU1*cosSigma-sinU1*sinSigma*cosAlpha1)
	c := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
	bigL := lambda - (1-c)*f*sinAlpha*
		(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

	lat2 := phi2 * 180 / math.Pi
	lon2 := lon + bigL*180/math.Pi
	// normalize longitude to [-180, 180]
	lon2 = math.Mod(lon2+540, 360) - 180
	return lat2, lon2
}

// GreatCircleDistance returns the distance in meters between two points using
// the haversine formula on a spherical Earth. Used for verification and
// extent math where sub-meter precision is not needed.
func GreatCircleDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusM = 6371000.0
	toRad := math.Pi / 180
	dLat := (lat2 - lat1) * toRad
	dLon := (lon2 - lon1) * toRad
	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)
	h := sinDLat*sinDLat + math.Cos(lat1*toRad)*math.Cos(lat2*toRad)*sinDLon*sinDLon
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}
