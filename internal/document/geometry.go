package document

import (
	"errors"

	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrUnsupportedGeometry is returned when polygon ingestion receives a value
// it cannot interpret. Accepted forms: a simplefeatures polygon or geometry,
// a GeoJSON geometry map, or a [][2]float64 lon/lat ring.
var ErrUnsupportedGeometry = errors.New(
	"unsupported geometry: provide a simplefeatures polygon, a GeoJSON geometry map, or a [][2]float64 lon/lat ring")

// PolygonGeometry normalizes a polygon input into a value that marshals to a
// GeoJSON geometry. Open rings are closed by repeating the first vertex.
func PolygonGeometry(value any) (any, error) {
	switch g := value.(type) {
	case geom.Polygon:
		return g.AsGeometry(), nil
	case geom.Geometry:
		return g, nil
	case map[string]any:
		if _, ok := g["type"]; !ok {
			return nil, ErrUnsupportedGeometry
		}
		if _, ok := g["coordinates"]; !ok {
			return nil, ErrUnsupportedGeometry
		}
		return g, nil
	case [][2]float64:
		if len(g) == 0 {
			return nil, ErrUnsupportedGeometry
		}
		ring := make([][2]float64, len(g), len(g)+1)
		copy(ring, g)
		if ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}
		return map[string]any{
			"type":        "Polygon",
			"coordinates": [][][2]float64{ring},
		}, nil
	default:
		return nil, ErrUnsupportedGeometry
	}
}
