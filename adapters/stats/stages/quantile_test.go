package stages

import (
	"math"
	"testing"
)

func TestQuantileLinearInterpolation(t *testing.T) {
	data := []float64{500, 600, 1000, 1500}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 500},
		{0.33, 599},  // h = 0.99, between 500 and 600
		{0.66, 992},  // h = 1.98, between 600 and 1000
		{0.5, 800},   // midpoint of 600 and 1000
		{1, 1500},
	}

	for _, tt := range tests {
		got := Quantile(data, tt.p)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Quantile(p=%.2f) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestQuantileSingleValue(t *testing.T) {
	got := Quantile([]float64{42}, 0.99)
	if got != 42 {
		t.Errorf("expected single value back, got %v", got)
	}
}

func TestQuantileExcludesNaN(t *testing.T) {
	withNaN := []float64{math.NaN(), 10, math.NaN(), 20}
	if got := Quantile(withNaN, 0.5); got != 15 {
		t.Errorf("expected NaN-excluded median 15, got %v", got)
	}
}

func TestQuantileUndefinedCases(t *testing.T) {
	if got := Quantile(nil, 0.5); !math.IsNaN(got) {
		t.Errorf("expected NaN for empty input, got %v", got)
	}
	if got := Quantile([]float64{math.NaN()}, 0.5); !math.IsNaN(got) {
		t.Errorf("expected NaN for all-NaN input, got %v", got)
	}
	if got := Quantile([]float64{1, 2}, 1.5); !math.IsNaN(got) {
		t.Errorf("expected NaN for p outside [0,1], got %v", got)
	}
}

func TestQuantileDoesNotMutateInput(t *testing.T) {
	data := []float64{3, 1, 2}
	Quantile(data, 0.5)
	if data[0] != 3 || data[1] != 1 || data[2] != 2 {
		t.Errorf("input was reordered: %v", data)
	}
}
