package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRampFor(t *testing.T) {
	r := RampFor([]float64{3, 1, 7, 5})
	assert.Equal(t, 1.0, r.Min)
	assert.Equal(t, 7.0, r.Max)

	// no values gives [0, 1]
	r = RampFor(nil)
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 1.0, r.Max)

	// degenerate range is widened, not left zero
	r = RampFor([]float64{4, 4, 4})
	assert.Greater(t, r.Max, r.Min)
}

func TestColorRampHex(t *testing.T) {
	r := RampFor([]float64{0, 10})

	assert.Equal(t, "#440154", r.Hex(0))
	assert.Equal(t, "#21908c", r.Hex(5))
	assert.Equal(t, "#fde725", r.Hex(10))

	// out-of-range values clamp
	assert.Equal(t, "#440154", r.Hex(-100))
	assert.Equal(t, "#fde725", r.Hex(100))
}

func TestColorRampHex_Interpolates(t *testing.T) {
	r := RampFor([]float64{0, 10})
	mid := r.Hex(2.5)
	assert.NotEqual(t, r.Hex(0), mid)
	assert.NotEqual(t, r.Hex(5), mid)
	assert.Len(t, mid, 7)
	assert.Equal(t, uint8('#'), mid[0])
}
