package document

import (
	"fmt"
	"math"
)

// rampStops are the default color ramp endpoints (viridis-like).
var rampStops = [3]string{"#440154", "#21908C", "#FDE725"}

// ColorRamp linearly interpolates hex colors over a value range.
type ColorRamp struct {
	Min, Max float64
	stops    [3][3]float64
}

// RampFor builds a ramp spanning the given values. With no values the range
// is [0, 1]; a degenerate range is widened slightly so interpolation stays
// defined.
func RampFor(values []float64) ColorRamp {
	r := ColorRamp{Min: 0, Max: 1}
	for i, s := range rampStops {
		r.stops[i] = parseHex(s)
	}
	if len(values) == 0 {
		return r
	}
	r.Min, r.Max = values[0], values[0]
	for _, v := range values[1:] {
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	}
	if math.Abs(r.Max-r.Min) < 1e-12 {
		r.Max = r.Min + 1e-9
	}
	return r
}

// Hex returns the interpolated color for v as "#rrggbb".
func (r ColorRamp) Hex(v float64) string {
	t := (v - r.Min) / (r.Max - r.Min)
	t = math.Max(0, math.Min(1, t))

	// two segments across three stops
	var a, b [3]float64
	var f float64
	if t <= 0.5 {
		a, b, f = r.stops[0], r.stops[1], t*2
	} else {
		a, b, f = r.stops[1], r.stops[2], (t-0.5)*2
	}
	return fmt.Sprintf("#%02x%02x%02x",
		int(math.Round(a[0]+(b[0]-a[0])*f)),
		int(math.Round(a[1]+(b[1]-a[1])*f)),
		int(math.Round(a[2]+(b[2]-a[2])*f)),
	)
}

func parseHex(s string) [3]float64 {
	var r, g, b int
	fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b)
	return [3]float64{float64(r), float64(g), float64(b)}
}
