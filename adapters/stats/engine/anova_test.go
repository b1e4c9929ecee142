package engine

import (
	"math"
	"testing"

	"listinglens/domain/analysis"
)

func TestOneWayKnownDecomposition(t *testing.T) {
	groups := map[analysis.GroupLabel][]float64{
		"Low":    {100},
		"Medium": {200},
		"High":   {290, 310},
	}

	fit := NewAnovaEngine().OneWay(groups)

	if !fit.Defined() {
		t.Fatalf("expected defined result, got reason %q", fit.Reason)
	}
	if fit.GrandMean != 225 {
		t.Errorf("grand mean = %v, want 225", fit.GrandMean)
	}
	if fit.GroupMeans["High"] != 300 {
		t.Errorf("High mean = %v, want 300", fit.GroupMeans["High"])
	}

	// By hand: between = 125^2 + 25^2 + 2*75^2 = 27500, within = 200
	if math.Abs(fit.BetweenSS-27500) > 1e-9 {
		t.Errorf("between SS = %v, want 27500", fit.BetweenSS)
	}
	if math.Abs(fit.WithinSS-200) > 1e-9 {
		t.Errorf("within SS = %v, want 200", fit.WithinSS)
	}
	if fit.DFBetween != 2 || fit.DFWithin != 1 {
		t.Errorf("df = (%d, %d), want (2, 1)", fit.DFBetween, fit.DFWithin)
	}
	if math.Abs(fit.FStatistic-68.75) > 1e-9 {
		t.Errorf("F = %v, want 68.75", fit.FStatistic)
	}
	if !(fit.PValue > 0 && fit.PValue < 1) {
		t.Errorf("p = %v, want in (0, 1)", fit.PValue)
	}
}

func TestOneWaySumOfSquaresIdentity(t *testing.T) {
	groups := map[analysis.GroupLabel][]float64{
		"Low":    {120, 130, 145, 160},
		"Medium": {200, 210, 190},
		"High":   {300, 280, 310, 320, 305},
	}

	fit := NewAnovaEngine().OneWay(groups)
	if !fit.Defined() {
		t.Fatalf("expected defined result, got reason %q", fit.Reason)
	}

	// Total SS computed directly from the pooled sample
	var pooled []float64
	for _, vs := range groups {
		pooled = append(pooled, vs...)
	}
	totalSS := 0.0
	for _, v := range pooled {
		totalSS += (v - fit.GrandMean) * (v - fit.GrandMean)
	}

	if math.Abs(fit.TotalSS()-totalSS) > 1e-6 {
		t.Errorf("between + within = %v, direct total = %v", fit.TotalSS(), totalSS)
	}
}

func TestOneWayIdenticalValuesDegenerate(t *testing.T) {
	groups := map[analysis.GroupLabel][]float64{
		"Low":  {50, 50, 50},
		"High": {50, 50},
	}

	fit := NewAnovaEngine().OneWay(groups)

	if fit.Reason != analysis.ReasonDegenerateVariance {
		t.Fatalf("expected DEGENERATE_VARIANCE, got %q", fit.Reason)
	}
	if !math.IsNaN(fit.FStatistic) || !math.IsNaN(fit.PValue) {
		t.Errorf("expected NaN F and p, got F=%v p=%v", fit.FStatistic, fit.PValue)
	}
	if fit.Defined() {
		t.Error("degenerate fit must not report as defined")
	}
}

func TestOneWayZeroWithinVarianceOnly(t *testing.T) {
	groups := map[analysis.GroupLabel][]float64{
		"Low":  {10, 10},
		"High": {20, 20},
	}

	fit := NewAnovaEngine().OneWay(groups)

	// Between-group signal with zero noise: F is +Inf and p collapses to 0
	if !math.IsInf(fit.FStatistic, 1) {
		t.Errorf("F = %v, want +Inf", fit.FStatistic)
	}
	if fit.PValue != 0 {
		t.Errorf("p = %v, want 0", fit.PValue)
	}
}

func TestOneWayInsufficientGroups(t *testing.T) {
	fit := NewAnovaEngine().OneWay(map[analysis.GroupLabel][]float64{
		"Low":    {1, 2, 3},
		"Medium": {},
	})

	if fit.Reason != analysis.ReasonInsufficientGroups {
		t.Fatalf("expected INSUFFICIENT_GROUPS, got %q", fit.Reason)
	}
	if !math.IsNaN(fit.FStatistic) {
		t.Errorf("expected NaN F, got %v", fit.FStatistic)
	}
	// Group means for the populated group are still reported
	if fit.GroupMeans["Low"] != 2 {
		t.Errorf("Low mean = %v, want 2", fit.GroupMeans["Low"])
	}
}

func TestOneWayNoData(t *testing.T) {
	fit := NewAnovaEngine().OneWay(map[analysis.GroupLabel][]float64{})
	if fit.Reason != analysis.ReasonNoData {
		t.Fatalf("expected NO_DATA, got %q", fit.Reason)
	}

	fit = NewAnovaEngine().OneWay(map[analysis.GroupLabel][]float64{"Low": {}})
	if fit.Reason != analysis.ReasonNoData {
		t.Fatalf("expected NO_DATA for all-empty groups, got %q", fit.Reason)
	}
}

func TestOneWaySaturatedDesign(t *testing.T) {
	// One observation per group leaves no within-group degrees of freedom
	fit := NewAnovaEngine().OneWay(map[analysis.GroupLabel][]float64{
		"Low":  {10},
		"High": {20},
	})
	if fit.Reason != analysis.ReasonInsufficientGroups {
		t.Fatalf("expected INSUFFICIENT_GROUPS, got %q", fit.Reason)
	}
}
