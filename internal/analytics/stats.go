// EduLens - Student Insight and Predictive Risk Analytics
// Copyright 2026 EduLens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/edulens/edulens

package analytics

import "math"

// mean returns the arithmetic mean, or 0 for an empty slice.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}

// stddev returns the population standard deviation, or 0 for fewer than
// two values.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, v := range xs {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// pearson returns the Pearson correlation coefficient of two equal-length
// series. Degenerate input (mismatched length, fewer than two points, or a
// constant series) returns 0.
func pearson(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0
	}

	mx, my := mean(xs), mean(ys)
	var cov, vx, vy float64
	for i := range xs {
		dx := xs[i] - mx
		dy := ys[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// InterpretCorrelation labels a correlation coefficient using fixed bins:
// |r| >= 0.7 strong, >= 0.4 moderate, >= 0.2 weak, else no significant
// correlation, sign-qualified. Pure function of r.
func InterpretCorrelation(r float64) string {
	switch {
	case r >= 0.7:
		return "Strong positive correlation"
	case r >= 0.4:
		return "Moderate positive correlation"
	case r >= 0.2:
		return "Weak positive correlation"
	case r > -0.2:
		return "No significant correlation"
	case r > -0.4:
		return "Weak negative correlation"
	case r > -0.7:
		return "Moderate negative correlation"
	default:
		return "Strong negative correlation"
	}
}

// round3 rounds to three decimal places for stable JSON output.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
