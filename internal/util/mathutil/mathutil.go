package mathutil

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrOverflow = errors.New("value exceeds target type capacity")

// Uint64ToInt64 converts node-reported values (timestamps) to int64
func Uint64ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("value %d overflows int64: %w", v, ErrOverflow)
	}
	return int64(v), nil
}

// SecondsToDuration converts fractional seconds to a Duration, saturating
// at the representable range instead of wrapping.
func SecondsToDuration(s float64) time.Duration {
	ns := s * float64(time.Second)
	switch {
	case math.IsNaN(ns):
		return 0
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(ns)
}
