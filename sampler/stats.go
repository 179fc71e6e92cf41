package sampler

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes a sample set for interval reports.
type Distribution struct {
	Mean float64
	P10  float64
	P50  float64
	P90  float64
}

// Summarize computes mean and percentiles over values. Returns the zero
// Distribution for an empty set.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean: stat.Mean(sorted, nil),
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
}
