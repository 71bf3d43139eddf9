package geo

import (
	"errors"
	"math"
	"testing"
)

func TestGeodesicRing_VertexCount(t *testing.T) {
	for _, segments := range []int{3, 4, 64, 256} {
		ring, err := GeodesicRing(43.0, 16.0, 50000, segments)
		if err != nil {
			t.Fatalf("GeodesicRing(%d segments) failed: %v", segments, err)
		}
		if len(ring) != segments+1 {
			t.Errorf("expected %d vertices, got %d", segments+1, len(ring))
		}
		if ring[0] != ring[len(ring)-1] {
			t.Errorf("ring not closed: first %v last %v", ring[0], ring[len(ring)-1])
		}
	}
}

func TestGeodesicRing_VerticesAtRadius(t *testing.T) {
	const (
		lat     = 36.8
		lon     = -25.5
		radiusM = 81488.0
	)
	ring, err := GeodesicRing(lat, lon, radiusM, 128)
	if err != nil {
		t.Fatal(err)
	}
	// haversine vs ellipsoidal disagree by up to ~0.5%
	for i, v := range ring[:len(ring)-1] {
		d := GreatCircleDistance(lat, lon, v[1], v[0])
		if math.Abs(d-radiusM)/radiusM > 0.01 {
			t.Errorf("vertex %d at distance %.1f, want ~%.1f", i, d, radiusM)
		}
	}
}

func TestGeodesicRing_StartsNorthClockwise(t *testing.T) {
	ring, err := GeodesicRing(10.0, 20.0, 10000, 4)
	if err != nil {
		t.Fatal(err)
	}
	// bearing 0: due north of center
	if ring[0][1] <= 10.0 {
		t.Errorf("first vertex latitude %.4f not north of center", ring[0][1])
	}
	if math.Abs(ring[0][0]-20.0) > 1e-6 {
		t.Errorf("first vertex longitude %.6f shifted from center", ring[0][0])
	}
	// bearing 90: due east
	if ring[1][0] <= 20.0 {
		t.Errorf("second vertex longitude %.4f not east of center", ring[1][0])
	}
	// bearing 180: due south
	if ring[2][1] >= 10.0 {
		t.Errorf("third vertex latitude %.4f not south of center", ring[2][1])
	}
}

func TestGeodesicRing_ZeroRadius(t *testing.T) {
	ring, err := GeodesicRing(52.1, 4.3, 0, 8)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range ring {
		if math.Abs(v[1]-52.1) > 1e-9 || math.Abs(v[0]-4.3) > 1e-9 {
			t.Errorf("vertex %d = %v, want center", i, v)
		}
	}
}

func TestGeodesicRing_RadiusMonotonic(t *testing.T) {
	small, err := GeodesicRing(0, 0, 10000, 32)
	if err != nil {
		t.Fatal(err)
	}
	large, err := GeodesicRing(0, 0, 50000, 32)
	if err != nil {
		t.Fatal(err)
	}
	for i := range small[:len(small)-1] {
		ds := GreatCircleDistance(0, 0, small[i][1], small[i][0])
		dl := GreatCircleDistance(0, 0, large[i][1], large[i][0])
		if dl <= ds {
			t.Errorf("vertex %d: larger radius gave distance %.1f <= %.1f", i, dl, ds)
		}
	}
}

func TestGeodesicRing_RejectsBadInput(t *testing.T) {
	if _, err := GeodesicRing(0, 0, 1000, 2); !errors.Is(err, ErrSegmentCount) {
		t.Errorf("segments=2: expected ErrSegmentCount, got %v", err)
	}
	if _, err := GeodesicRing(0, 0, 1000, 0); !errors.Is(err, ErrSegmentCount) {
		t.Errorf("segments=0: expected ErrSegmentCount, got %v", err)
	}
	if _, err := GeodesicRing(0, 0, -1, 64); !errors.Is(err, ErrNegativeRadius) {
		t.Errorf("radius=-1: expected ErrNegativeRadius, got %v", err)
	}
}

func TestVincentyDirect_KnownDistance(t *testing.T) {
	// 1 degree of latitude along a meridian from the equator is ~110574 m
	lat2, lon2 := vincentyDirect(0, 0, 0, 110574)
	if math.Abs(lat2-1.0) > 0.001 {
		t.Errorf("expected latitude ~1.0, got %.6f", lat2)
	}
	if math.Abs(lon2) > 1e-9 {
		t.Errorf("expected longitude 0, got %.9f", lon2)
	}
}

func TestVincentyDirect_NormalizesLongitude(t *testing.T) {
	// heading east across the antimeridian
	_, lon2 := vincentyDirect(0, 179.5, 90, 111000)
	if lon2 > 180 || lon2 < -180 {
		t.Errorf("longitude %.4f out of [-180, 180]", lon2)
	}
	if lon2 > 0 {
		t.Errorf("expected wrapped negative longitude, got %.4f", lon2)
	}
}

func TestGreatCircleDistance(t *testing.T) {
	// equator to 1 degree north, spherical Earth
	d := GreatCircleDistance(0, 0, 1, 0)
	if math.Abs(d-111195) > 100 {
		t.Errorf("expected ~111195 m, got %.1f", d)
	}
	if GreatCircleDistance(45, 7, 45, 7) != 0 {
		t.Error("identical points should be at distance 0")
	}
}
