// ABOUTME: Round-half-away-from-zero integer ratio arithmetic
// ABOUTME: Shared by both pipelines' client-rate/server-rate clock conversions
package pipeline

import "math"

// roundRatio computes round(n * num / den) using round-half-away-from-zero,
// matching the sample-count conversions spec section 4.4/4.5 spell out as
// plain "round(...)".
func roundRatio(n, num, den int64) int64 {
	return int64(math.Round(float64(n) * float64(num) / float64(den)))
}

// roundDiv computes round(n / d).
func roundDiv(n, d int64) int64 {
	return roundRatio(n, 1, d)
}

func absInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
