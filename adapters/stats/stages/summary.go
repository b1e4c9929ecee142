package stages

import (
	"math"

	"listinglens/domain/analysis"
	"listinglens/domain/table"

	"github.com/montanaflynn/stats"
)

// Summarizer computes per-group descriptive statistics of a value field
type Summarizer struct {
	Labels [3]analysis.GroupLabel
}

// NewSummarizer creates a summarizer emitting one row per label in fixed
// ascending order
func NewSummarizer(labels [3]analysis.GroupLabel) *Summarizer {
	return &Summarizer{Labels: labels}
}

// Summarize aggregates the value field within each group. Rows with a
// missing value or a missing group label are excluded. Every label gets a
// row even when its group is empty: count 0 and NaN statistics.
func (s *Summarizer) Summarize(t *table.Table, valueField, groupField string) ([]analysis.GroupSummary, error) {
	grouped, err := SplitByGroup(t, valueField, groupField)
	if err != nil {
		return nil, err
	}

	summaries := make([]analysis.GroupSummary, 0, len(s.Labels))
	for _, label := range s.Labels {
		summaries = append(summaries, summarizeGroup(label, grouped[label]))
	}
	return summaries, nil
}

func summarizeGroup(label analysis.GroupLabel, values []float64) analysis.GroupSummary {
	summary := analysis.GroupSummary{
		Label:  label,
		Count:  len(values),
		Mean:   math.NaN(),
		Median: math.NaN(),
		StdDev: math.NaN(),
	}
	if len(values) == 0 {
		return summary
	}

	if mean, err := stats.Mean(values); err == nil {
		summary.Mean = mean
	}
	if median, err := stats.Median(values); err == nil {
		summary.Median = median
	}
	// Sample (Bessel-corrected) standard deviation; undefined for n < 2.
	if len(values) >= 2 {
		if sd, err := stats.StandardDeviationSample(values); err == nil {
			summary.StdDev = sd
		}
	}
	return summary
}

// SplitByGroup partitions the non-missing values of valueField by group
// label, dropping rows whose label is missing
func SplitByGroup(t *table.Table, valueField, groupField string) (map[analysis.GroupLabel][]float64, error) {
	values, err := t.Numeric(valueField)
	if err != nil {
		return nil, err
	}
	labels, err := t.Labels(groupField)
	if err != nil {
		return nil, err
	}

	grouped := make(map[analysis.GroupLabel][]float64)
	for i, v := range values {
		if math.IsNaN(v) || labels[i] == "" {
			continue
		}
		label := analysis.GroupLabel(labels[i])
		grouped[label] = append(grouped[label], v)
	}
	return grouped, nil
}
