package track

import (
	"errors"
	"time"
)

// ErrThreshold is returned when gap detection is invoked with a non-positive
// threshold.
var ErrThreshold = errors.New("gap threshold must be positive")

// Gap is an interval between consecutive fixes whose elapsed time exceeds a
// configured threshold. Before and After are indices into the scanned track.
type Gap struct {
	Before  int
	After   int
	From    Fix
	To      Fix
	Elapsed time.Duration
}

// Hours returns the elapsed gap duration in fractional hours.
func (g Gap) Hours() float64 {
	return g.Elapsed.Hours()
}

// FindFirstGap scans adjacent fix pairs and returns the first whose elapsed
// time strictly exceeds threshold. An elapsed time equal to the threshold
// does not qualify. The first qualifying gap wins even when a later gap is
// larger. A gapless track returns (nil, nil); that is an expected outcome,
// not an error.
//
// The track must already be in non-decreasing time order; use SortFixes
// first if it may not be.
func FindFirstGap(t Track, threshold time.Duration) (*Gap, error) {
	if threshold <= 0 {
		return nil, ErrThreshold
	}
	if !t.Sorted() {
		return nil, ErrUnordered
	}
	for i := 1; i < len(t); i++ {
		elapsed := t[i].Time.Sub(t[i-1].Time)
		if elapsed > threshold {
			return &Gap{
				Before:  i - 1,
				After:   i,
				From:    t[i-1],
				To:      t[i],
				Elapsed: elapsed,
			}, nil
		}
	}
	return nil, nil
}
