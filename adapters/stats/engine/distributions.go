package engine

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides unified access to the distribution functions the
// engine needs, so CDF calculations are not scattered through the tests
type Distributions struct{}

// NewDistributions creates a distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// FTestPValue computes the upper-tail p-value for the F-distribution
func (d *Distributions) FTestPValue(fStatistic float64, df1, df2 int) float64 {
	if df1 <= 0 || df2 <= 0 || math.IsNaN(fStatistic) {
		return math.NaN()
	}
	if math.IsInf(fStatistic, 1) {
		return 0
	}

	fDist := distuv.F{D1: float64(df1), D2: float64(df2)}
	return 1 - fDist.CDF(fStatistic)
}

// NormalCDF computes the standard normal cumulative distribution function
func (d *Distributions) NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalPDF computes the standard normal density
func (d *Distributions) NormalPDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

// StudentsTQuantile computes the t-distribution quantile, used to cross-check
// the studentized range against the k=2 identity q = sqrt(2)*t
func (d *Distributions) StudentsTQuantile(p float64, df float64) float64 {
	if df <= 0 {
		return math.NaN()
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(p)
}
