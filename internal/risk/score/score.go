// Package score implements the four domain scorers of the stability
// pipeline: usage, incident, maintenance, and vulnerability.
//
// Every scorer follows the same contract: per-event records in, exactly one
// row per hardware asset out, with an overall score normalized into [0, 1]
// by the population maximum of the current run. Degenerate normalization
// ranges (max == min, or population max of 0) produce 0, never an error.
package score

import "math"

// normalize scales v into [0, 100] over the [min, max] range. A collapsed
// range yields 0 to avoid a division by zero.
func normalize(v, min, max float64) float64 {
	if !(max > min) {
		return 0
	}
	return (v - min) / (max - min) * 100
}

// mean averages the valid values of a slice. NaN entries, which the dataset
// layer uses for uncoercible cells, are skipped; an all-invalid slice
// averages to 0.
func mean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// populationMax returns the largest valid value, or 0 when there is none.
func populationMax(values []float64) float64 {
	max := math.Inf(-1)
	found := false
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !found || v > max {
			max = v
			found = true
		}
	}
	if !found {
		return 0
	}
	return max
}

// populationMin returns the smallest valid value, or 0 when there is none.
func populationMin(values []float64) float64 {
	min := math.Inf(1)
	found := false
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !found || v < min {
			min = v
			found = true
		}
	}
	if !found {
		return 0
	}
	return min
}

// divByMax divides v by the population maximum, the shared final step of
// every domain scorer. A non-positive or invalid max yields 0.
func divByMax(v, max float64) float64 {
	if math.IsNaN(max) || max == 0 {
		return 0
	}
	return v / max
}
