package stages

import (
	"errors"
	"math"
	"testing"

	"listinglens/domain/core"
	"listinglens/domain/table"
)

func priceTable(t *testing.T, values []table.Value) *table.Table {
	t.Helper()
	tbl, err := table.New(table.Column{Name: "price", Values: values})
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return tbl
}

func TestCapperDropsValuesAboveThreshold(t *testing.T) {
	values := make([]table.Value, 0, 11)
	for i := 1; i <= 10; i++ {
		values = append(values, table.NewNumericValue(float64(i)))
	}
	values = append(values, table.NewNumericValue(1000))
	tbl := priceTable(t, values)

	capper := NewCapper(0.99)
	filtered, thresholds, err := capper.Apply(tbl, []string{"price"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	// h = 0.99 * 10 = 9.9, interpolating between 10 and 1000
	wantThreshold := 901.0
	if math.Abs(thresholds["price"]-wantThreshold) > 1e-9 {
		t.Errorf("threshold = %v, want %v", thresholds["price"], wantThreshold)
	}
	if filtered.NumRows() != 10 {
		t.Errorf("expected the single outlier dropped, got %d rows", filtered.NumRows())
	}
}

func TestCapperKeepsValuesAtThreshold(t *testing.T) {
	tbl := priceTable(t, []table.Value{
		table.NewNumericValue(10),
		table.NewNumericValue(20),
		table.NewNumericValue(30),
	})

	capper := NewCapper(1.0)
	filtered, thresholds, err := capper.Apply(tbl, []string{"price"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if thresholds["price"] != 30 {
		t.Errorf("threshold = %v, want 30", thresholds["price"])
	}
	// Comparison is <=, the maximum itself survives
	if filtered.NumRows() != 3 {
		t.Errorf("expected all rows retained, got %d", filtered.NumRows())
	}
}

func TestCapperDropsMissingValues(t *testing.T) {
	tbl := priceTable(t, []table.Value{
		table.NewNumericValue(10),
		table.NewMissingValue(),
		table.NewNumericValue(20),
	})

	capper := NewCapper(0.99)
	filtered, _, err := capper.Apply(tbl, []string{"price"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if filtered.NumRows() != 2 {
		t.Errorf("expected missing row dropped, got %d rows", filtered.NumRows())
	}
}

func TestCapperNeverGrowsRowCount(t *testing.T) {
	tbl := priceTable(t, []table.Value{
		table.NewNumericValue(5),
		table.NewNumericValue(6),
	})

	capper := NewCapper(0.5)
	filtered, _, err := capper.Apply(tbl, []string{"price"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if filtered.NumRows() > tbl.NumRows() {
		t.Fatalf("filter grew the table: %d > %d", filtered.NumRows(), tbl.NumRows())
	}
}

func TestCapperEmptyInput(t *testing.T) {
	tbl := priceTable(t, nil)

	capper := NewCapper(0.99)
	_, _, err := capper.Apply(tbl, []string{"price"})
	if !errors.Is(err, core.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestCapperAllMissingDropsEverything(t *testing.T) {
	tbl := priceTable(t, []table.Value{
		table.NewMissingValue(),
		table.NewMissingValue(),
	})

	capper := NewCapper(0.99)
	filtered, thresholds, err := capper.Apply(tbl, []string{"price"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !math.IsNaN(thresholds["price"]) {
		t.Errorf("expected NaN threshold, got %v", thresholds["price"])
	}
	if filtered.NumRows() != 0 {
		t.Errorf("expected no surviving rows, got %d", filtered.NumRows())
	}
}
