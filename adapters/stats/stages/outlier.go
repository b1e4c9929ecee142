package stages

import (
	"math"

	"listinglens/domain/core"
	"listinglens/domain/table"
)

// Capper filters records whose capped fields exceed a per-field percentile
// threshold
type Capper struct {
	Quantile float64 // e.g. 0.99 keeps everything at or below the 99th percentile
}

// NewCapper creates an outlier capper at the given quantile
func NewCapper(quantile float64) *Capper {
	return &Capper{Quantile: quantile}
}

// Thresholds computes the per-field cutoff from non-missing values
func (c *Capper) Thresholds(t *table.Table, fields []string) (map[string]float64, error) {
	thresholds := make(map[string]float64, len(fields))
	for _, field := range fields {
		values, err := t.Numeric(field)
		if err != nil {
			return nil, err
		}
		thresholds[field] = Quantile(values, c.Quantile)
	}
	return thresholds, nil
}

// Apply retains only rows where every capped field's value is <= its
// threshold. A missing value cannot satisfy the comparison, so rows with a
// missing capped field are dropped. The result never has more rows than the
// input.
func (c *Capper) Apply(t *table.Table, fields []string) (*table.Table, map[string]float64, error) {
	if t.NumRows() == 0 {
		return nil, nil, core.ErrEmptyDataset
	}

	thresholds, err := c.Thresholds(t, fields)
	if err != nil {
		return nil, nil, err
	}

	columns := make(map[string][]float64, len(fields))
	for _, field := range fields {
		values, err := t.Numeric(field)
		if err != nil {
			return nil, nil, err
		}
		columns[field] = values
	}

	filtered := t.Filter(func(row int) bool {
		for _, field := range fields {
			v := columns[field][row]
			threshold := thresholds[field]
			// NaN comparisons are false, which drops missing values and
			// drops everything when the threshold itself is undefined.
			if math.IsNaN(threshold) || !(v <= threshold) {
				return false
			}
		}
		return true
	})

	return filtered, thresholds, nil
}
