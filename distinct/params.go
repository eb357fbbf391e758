package distinct

import (
	"fmt"
	"math"
)

// CapacityForAccuracy derives the sample-buffer capacity needed so that the
// estimate lands within a relative error eps of the true distinct count with
// probability at least 1-delta, for any stream of at most n elements.
//
// The formula is s = ceil(12/eps^2 * log2(8n/delta)), the constant from the
// Chakraborti/Vinodchandran/Meel analysis. If the stream length is unknown
// ahead of time, pass a conservative upper bound; the estimator does not
// resize, and a stream that outgrows n eventually fails ingestion with
// ErrPrecisionExhausted.
func CapacityForAccuracy(eps, delta float64, n uint64) (int, error) {
	if eps <= 0 || eps >= 1 || math.IsNaN(eps) {
		return 0, fmt.Errorf("distinct: eps %v is outside (0, 1)", eps)
	}
	if delta <= 0 || delta >= 1 || math.IsNaN(delta) {
		return 0, fmt.Errorf("distinct: delta %v is outside (0, 1)", delta)
	}
	if n == 0 {
		return 0, fmt.Errorf("distinct: stream length bound must be at least 1")
	}

	s := math.Ceil(12 / (eps * eps) * math.Log2(8*float64(n)/delta))
	if s < 1 || s > math.MaxInt32 {
		return 0, fmt.Errorf("distinct: derived capacity %v for eps=%v delta=%v n=%d is unusable", s, eps, delta, n)
	}
	return int(s), nil
}
