package tabfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"listinglens/domain/core"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestDataReaderCSV(t *testing.T) {
	path := writeCSV(t, "price,property_sqft,city\n"+
		"\"$250,000\",1200,Austin\n"+
		"call for price,900,Dallas\n"+
		"\"$410,000\",,Houston\n")

	reader := NewDataReader(path, []string{"price", "property_sqft"})
	tbl, err := reader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if tbl.NumRows() != 3 {
		t.Fatalf("expected 3 rows, got %d", tbl.NumRows())
	}
	for _, col := range []string{"price", "property_sqft", "city"} {
		if !tbl.HasColumn(col) {
			t.Errorf("missing column %q", col)
		}
	}

	// Declared numeric fields are coerced, the rest stay strings
	price, _ := tbl.Value("price", 0)
	if !price.IsNumeric() || price.AsFloat64() != 250000 {
		t.Errorf("price row 0: %v", price)
	}
	junk, _ := tbl.Value("price", 1)
	if !junk.IsMissing {
		t.Errorf("unparseable price should be missing: %v", junk)
	}
	blank, _ := tbl.Value("property_sqft", 2)
	if !blank.IsMissing {
		t.Errorf("blank sqft should be missing: %v", blank)
	}
	city, _ := tbl.Value("city", 0)
	if !city.IsString() || city.AsString() != "Austin" {
		t.Errorf("city row 0: %v", city)
	}
}

func TestDataReaderRaggedRows(t *testing.T) {
	path := writeCSV(t, "price,property_sqft\n"+
		"100000\n"+
		"200000,1500\n")

	reader := NewDataReader(path, []string{"price", "property_sqft"})
	tbl, err := reader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Short rows pad with missing cells instead of failing
	v, _ := tbl.Value("property_sqft", 0)
	if !v.IsMissing {
		t.Errorf("expected padded missing cell, got %v", v)
	}
}

func TestDataReaderHeaderOnly(t *testing.T) {
	path := writeCSV(t, "price,property_sqft\n")

	reader := NewDataReader(path, []string{"price"})
	_, err := reader.Load(context.Background())
	if !errors.Is(err, core.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestDataReaderMissingFile(t *testing.T) {
	reader := NewDataReader(filepath.Join(t.TempDir(), "absent.csv"), nil)
	if _, err := reader.Load(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDataReaderName(t *testing.T) {
	if got := NewDataReader("/tmp/x.csv", nil).Name(); got != "csv:/tmp/x.csv" {
		t.Errorf("Name() = %q", got)
	}
	if got := NewDataReader("/tmp/x.xlsx", nil).Name(); got != "xlsx:/tmp/x.xlsx" {
		t.Errorf("Name() = %q", got)
	}
}
