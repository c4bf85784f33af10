package domain

import "math"

// roundTo rounds half up to the given number of decimals, matching how the
// dashboard has always displayed these figures.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Floor(v*p+0.5) / p
}

func round0(v float64) float64 { return roundTo(v, 0) }
func round1(v float64) float64 { return roundTo(v, 1) }
func round2(v float64) float64 { return roundTo(v, 2) }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
