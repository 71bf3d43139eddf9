package geo

import (
	"errors"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// ErrEmptyRing is returned when an extent or polygon is requested for a ring
// with no vertices.
var ErrEmptyRing = errors.New("ring has no vertices")

// webMercatorWorldM is the extent of the EPSG:3857 world in meters.
const webMercatorWorldM = 2 * math.Pi * semiMajorAxis

// Extent is an axis-aligned bounding box in Web Mercator (EPSG:3857) meters.
type Extent struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the extent width in meters.
func (e Extent) Width() float64 { return e.MaxX - e.MinX }

// Height returns the extent height in meters.
func (e Extent) Height() float64 { return e.MaxY - e.MinY }

// Coords3857From4326 projects a WGS84 lon/lat into Web Mercator.
func Coords3857From4326(longitude, latitude float64) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(longitude, latitude, 0)
	return x, y
}

// MercatorExtent returns the Web Mercator bounding box of a [lon, lat] ring.
func MercatorExtent(ring [][2]float64) (Extent, error) {
	if len(ring) == 0 {
		return Extent{}, ErrEmptyRing
	}
	var ext Extent
	for i, v := range ring {
		x, y := Coords3857From4326(v[0], v[1])
		if i == 0 {
			ext = Extent{MinX: x, MinY: y, MaxX: x, MaxY: y}
			continue
		}
		ext.MinX = math.Min(ext.MinX, x)
		ext.MinY = math.Min(ext.MinY, y)
		ext.MaxX = math.Max(ext.MaxX, x)
		ext.MaxY = math.Max(ext.MaxY, y)
	}
	return ext, nil
}

// ZoomForExtent picks the highest standard tile zoom level at which the
// extent fits into a viewport of the given pixel size, assuming 256px tiles.
// Degenerate extents map to the maximum returned zoom of 18.
func ZoomForExtent(ext Extent, viewportPx int) int {
	span := math.Max(ext.Width(), ext.Height())
	if span <= 0 {
		return 18
	}
	metersPerPx := span / float64(viewportPx)
	for zoom := 18; zoom > 0; zoom-- {
		zoomMetersPerPx := webMercatorWorldM / (256 * math.Exp2(float64(zoom)))
		if zoomMetersPerPx >= metersPerPx {
			return zoom
		}
	}
	return 0
}

// RingPolygon builds a simplefeatures polygon from a closed [lon, lat] ring.
func RingPolygon(ring [][2]float64) (geom.Polygon, error) {
	if len(ring) == 0 {
		return geom.Polygon{}, ErrEmptyRing
	}
	flat := make([]float64, 0, len(ring)*2)
	for _, v := range ring {
		flat = append(flat, v[0], v[1])
	}
	seq := geom.NewSequence(flat, geom.DimXY)
	ls, err := geom.NewLineString(seq)
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("building ring boundary: %w", err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{ls})
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("building ring polygon: %w", err)
	}
	return poly, nil
}
