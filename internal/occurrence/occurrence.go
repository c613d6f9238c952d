// Package occurrence counts values that appear more often than a fraction of
// the input. Given n values and a divisor k, a value qualifies when it occurs
// strictly more than n/k times (integer division).
package occurrence

import "errors"

// ErrInvalidDivisor is returned when the divisor k is not a positive integer.
var ErrInvalidDivisor = errors.New("divisor k must be a positive integer")

// CountFrequent returns how many distinct values occur strictly more than
// len(values)/k times. The result is a count only; no ordering is implied.
func CountFrequent[T comparable](values []T, k int) (int, error) {
	if k <= 0 {
		return 0, ErrInvalidDivisor
	}

	counts := make(map[T]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	threshold := len(values) / k
	frequent := 0
	for _, n := range counts {
		if n > threshold {
			frequent++
		}
	}
	return frequent, nil
}
