// Package categorize buckets assets into risk tiers from the z-score of
// their composite stability score.
//
// The classification is population-relative: the mean and standard
// deviation are recomputed from scratch over the current run's asset set,
// so the same asset can change tier between runs purely because the
// population shifted. That is an intentional property of the metric, not
// drift.
package categorize

import "math"

// Category is a risk tier label.
type Category string

const (
	HighRisk     Category = "High Risk"
	ModerateRisk Category = "Moderate Risk"
	LowRisk      Category = "Low Risk"
	Unknown      Category = "Unknown"
)

// Z-score thresholds. The boundaries are strict on the high side:
// z > 1 is High, 0 < z <= 1 is Moderate, z <= 0 is Low.
const (
	highThreshold     = 1.0
	moderateThreshold = 0.0
)

// Result is the categorization of one asset. ZScore is NaN when the
// composite score was missing or the population was degenerate, in which
// case Category is Unknown.
type Result struct {
	ZScore   float64
	Category Category
}

// Categorize computes population z-scores for the composite scores and
// assigns each a risk tier. NaN inputs mark missing composites; they are
// excluded from the population statistics and classify as Unknown.
//
// A degenerate population (fewer than two valid scores, or zero standard
// deviation because every score is identical) yields NaN z-scores and
// Unknown for every asset rather than an error.
func Categorize(composites []float64) []Result {
	mean, stddev := stats(composites)

	results := make([]Result, len(composites))
	for i, v := range composites {
		z := math.NaN()
		if !math.IsNaN(v) && stddev > 0 {
			z = (v - mean) / stddev
		}
		results[i] = Result{ZScore: z, Category: classify(z)}
	}
	return results
}

// classify maps a z-score onto a tier. NaN fails every comparison and
// falls through to Unknown.
func classify(z float64) Category {
	switch {
	case z > highThreshold:
		return HighRisk
	case z > moderateThreshold && z <= highThreshold:
		return ModerateRisk
	case z <= moderateThreshold:
		return LowRisk
	default:
		return Unknown
	}
}

// stats returns the mean and sample standard deviation of the valid values.
func stats(values []float64) (mean, stddev float64) {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n < 2 {
		return 0, 0
	}
	mean = sum / float64(n)

	var ss float64
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		ss += d * d
	}
	stddev = math.Sqrt(ss / float64(n-1))
	return mean, stddev
}
