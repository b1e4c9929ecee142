package engine

import (
	"math"

	"listinglens/domain/analysis"
)

// AnovaEngine fits a one-way analysis of variance of a numeric response
// against an ordered group factor
type AnovaEngine struct {
	distributions *Distributions
}

// NewAnovaEngine creates an ANOVA engine
func NewAnovaEngine() *AnovaEngine {
	return &AnovaEngine{distributions: NewDistributions()}
}

// OneWay decomposes total variance into between-group and within-group sums
// of squares over the non-empty groups. Fewer than two non-empty groups, or
// a 0/0 F ratio, yields NaN statistics with a reason code rather than a
// crash; callers must check Defined before interpreting.
func (e *AnovaEngine) OneWay(groups map[analysis.GroupLabel][]float64) analysis.AnovaResult {
	result := analysis.AnovaResult{
		GroupMeans: make(map[analysis.GroupLabel]float64),
		GrandMean:  math.NaN(),
		FStatistic: math.NaN(),
		PValue:     math.NaN(),
	}

	total := 0
	sum := 0.0
	nonEmpty := 0
	for label, values := range groups {
		if len(values) == 0 {
			continue
		}
		nonEmpty++
		total += len(values)
		groupSum := 0.0
		for _, v := range values {
			groupSum += v
		}
		sum += groupSum
		result.GroupMeans[label] = groupSum / float64(len(values))
	}

	if total == 0 {
		result.Reason = analysis.ReasonNoData
		return result
	}
	result.GrandMean = sum / float64(total)

	if nonEmpty < 2 {
		result.Reason = analysis.ReasonInsufficientGroups
		return result
	}

	for label, values := range groups {
		if len(values) == 0 {
			continue
		}
		mean := result.GroupMeans[label]
		diff := mean - result.GrandMean
		result.BetweenSS += float64(len(values)) * diff * diff
		for _, v := range values {
			result.WithinSS += (v - mean) * (v - mean)
		}
	}

	result.DFBetween = nonEmpty - 1
	result.DFWithin = total - nonEmpty
	if result.DFWithin <= 0 {
		result.Reason = analysis.ReasonInsufficientGroups
		return result
	}

	msBetween := result.BetweenSS / float64(result.DFBetween)
	msWithin := result.WithinSS / float64(result.DFWithin)

	// 0/0 (all observations identical) stays NaN; x/0 is +Inf with p=0,
	// both per standard convention.
	result.FStatistic = msBetween / msWithin
	if math.IsNaN(result.FStatistic) {
		result.Reason = analysis.ReasonDegenerateVariance
		return result
	}

	result.PValue = e.distributions.FTestPValue(result.FStatistic, result.DFBetween, result.DFWithin)
	return result
}
