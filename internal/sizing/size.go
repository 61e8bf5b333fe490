// Package sizing provides safe size arithmetic and conversions to prevent overflow.
package sizing

import "math"

// ToInt64 converts a uint64 to int64, returning overflowErr if it doesn't fit.
func ToInt64(size uint64, overflowErr error) (int64, error) {
	if size > uint64(math.MaxInt64) {
		return 0, overflowErr
	}
	return int64(size), nil
}

// FromInt64 converts a non-negative int64 to uint64, returning overflowErr
// for negative values.
func FromInt64(size int64, overflowErr error) (uint64, error) {
	if size < 0 {
		return 0, overflowErr
	}
	return uint64(size), nil
}

// AddUint64 adds two uint64 values, returning (result, false) on overflow.
func AddUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// Sum adds all sizes, returning overflowErr if the total does not fit in an int64.
// The int64 bound is what io.SectionReader and os.File offsets accept.
func Sum(overflowErr error, sizes ...uint64) (uint64, error) {
	var total uint64
	for _, s := range sizes {
		var ok bool
		total, ok = AddUint64(total, s)
		if !ok || total > uint64(math.MaxInt64) {
			return 0, overflowErr
		}
	}
	return total, nil
}
