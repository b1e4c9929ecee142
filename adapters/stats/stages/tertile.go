package stages

import (
	"math"

	"listinglens/domain/analysis"
	"listinglens/domain/core"
	"listinglens/domain/table"
)

// Grouper partitions a numeric field into three ordered buckets at quantile
// boundaries
type Grouper struct {
	Probs  [2]float64
	Labels [3]analysis.GroupLabel
}

// NewGrouper creates a tertile grouper with the given cut probabilities and
// ascending labels
func NewGrouper(probs [2]float64, labels [3]analysis.GroupLabel) *Grouper {
	return &Grouper{Probs: probs, Labels: labels}
}

// Boundaries computes the cutoffs over the non-missing values of the field
func (g *Grouper) Boundaries(values []float64) (analysis.Boundaries, error) {
	b := analysis.Boundaries{
		Min:   Quantile(values, 0),
		QLow:  Quantile(values, g.Probs[0]),
		QHigh: Quantile(values, g.Probs[1]),
		Max:   Quantile(values, 1),
	}
	if math.IsNaN(b.Min) {
		return b, core.ErrNoData
	}
	return b, nil
}

// Classify maps one value onto a label. The first interval is closed on the
// left: Low = [Min, QLow], Medium = (QLow, QHigh], High = (QHigh, Max].
// Degenerate duplicate boundaries fall out of the same interval semantics:
// an empty half-open interval simply receives no rows. Values outside
// [Min, Max] (not possible when boundaries came from the same data) and NaN
// yield no label.
func (g *Grouper) Classify(v float64, b analysis.Boundaries) (analysis.GroupLabel, bool) {
	switch {
	case math.IsNaN(v):
		return "", false
	case v >= b.Min && v <= b.QLow:
		return g.Labels[0], true
	case v > b.QLow && v <= b.QHigh:
		return g.Labels[1], true
	case v > b.QHigh && v <= b.Max:
		return g.Labels[2], true
	default:
		return "", false
	}
}

// Apply attaches the group column to the table. Rows whose field value is
// missing get a missing label; downstream stages exclude them rather than
// failing.
func (g *Grouper) Apply(t *table.Table, field, groupField string) (*table.Table, analysis.Boundaries, error) {
	values, err := t.Numeric(field)
	if err != nil {
		return nil, analysis.Boundaries{}, err
	}

	bounds, err := g.Boundaries(values)
	if err != nil {
		return nil, bounds, err
	}

	labels := make([]table.Value, len(values))
	for i, v := range values {
		if label, ok := g.Classify(v, bounds); ok {
			labels[i] = table.NewStringValue(string(label))
		} else {
			labels[i] = table.NewMissingValue()
		}
	}

	grouped, err := t.WithColumn(groupField, labels)
	if err != nil {
		return nil, bounds, err
	}
	return grouped, bounds, nil
}
