// Package helpers provides small numeric conversions shared by the wire
// codec, the resolver and the configuration loader.
//
// Conversions that may lose range (int to uint16, durations coming from user
// input) clamp instead of wrapping.
package helpers

import (
	"cmp"
	"math"
	"time"
)

// Clamp restricts v to the range [lo, hi].
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// ClampInt restricts v to the range [lowerLimit, upperLimit].
func ClampInt(v, lowerLimit, upperLimit int) int {
	return Clamp(v, lowerLimit, upperLimit)
}

// ClampIntToUint16 converts v to uint16 with clamping.
// Values below 0 become 0; values above math.MaxUint16 become math.MaxUint16.
func ClampIntToUint16(v int) uint16 {
	return uint16(Clamp(v, 0, math.MaxUint16)) //nolint:gosec // clamped to valid range
}

// AtLeast returns d, or floor when d is shorter.
func AtLeast(d, floor time.Duration) time.Duration {
	return max(d, floor)
}

// Seconds converts a whole number of seconds to a Duration, treating
// negative input as zero.
func Seconds(n int) time.Duration {
	return time.Duration(max(n, 0)) * time.Second
}
