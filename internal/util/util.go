package util

import (
	"math"
	"time"
)

// AsInt32 converts i to int32, clamping at the int32 bounds.
func AsInt32(i int64) int32 {
	if i > math.MaxInt32 {
		return math.MaxInt32
	}
	if i < math.MinInt32 {
		return math.MinInt32
	}
	// #nosec G115 - bounded by explicit check
	return int32(i)
}

// Seconds returns d as whole seconds for int32 config fields such as pool
// lifetimes. Negative durations become zero.
func Seconds(d time.Duration) int32 {
	if d <= 0 {
		return 0
	}
	return AsInt32(int64(d / time.Second))
}
