package stages

import (
	"math"
	"sort"
)

// Quantile computes the empirical quantile at probability p using linear
// interpolation between order statistics: for a sorted sequence of length n,
// h = p*(n-1) and the result interpolates between x[floor(h)] and
// x[floor(h)+1]. This is R's type-7 convention; it is pinned here because
// statistical libraries disagree on the default and the thresholds must be
// reproducible. NaN inputs are excluded before computation.
func Quantile(data []float64, p float64) float64 {
	xs := dropNaN(data)
	if len(xs) == 0 || p < 0 || p > 1 {
		return math.NaN()
	}
	sort.Float64s(xs)

	if len(xs) == 1 {
		return xs[0]
	}

	h := p * float64(len(xs)-1)
	lo := int(math.Floor(h))
	frac := h - float64(lo)
	if lo+1 >= len(xs) {
		return xs[len(xs)-1]
	}
	return xs[lo] + frac*(xs[lo+1]-xs[lo])
}

// dropNaN returns a copy of data without NaN entries
func dropNaN(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
