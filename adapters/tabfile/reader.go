package tabfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"listinglens/adapters/coerce"
	"listinglens/domain/core"
	"listinglens/domain/table"

	"github.com/xuri/excelize/v2"
)

// DataReader loads Excel and CSV listing files into the table abstraction.
// Declared numeric fields are coerced on the way in; everything else stays a
// string column.
type DataReader struct {
	filePath      string
	fileType      string // "xlsx" or "csv"
	numericFields map[string]bool
	coercer       *coerce.NumericCoercer
}

// NewDataReader creates a reader that handles both Excel and CSV files
func NewDataReader(filePath string, numericFields []string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}

	fields := make(map[string]bool, len(numericFields))
	for _, f := range numericFields {
		fields[f] = true
	}
	return &DataReader{
		filePath:      filePath,
		fileType:      fileType,
		numericFields: fields,
		coercer:       coerce.NewNumericCoercer(),
	}
}

// Name identifies the source for logs and the run manifest
func (r *DataReader) Name() string {
	return fmt.Sprintf("%s:%s", r.fileType, r.filePath)
}

// Load reads the full dataset
func (r *DataReader) Load(_ context.Context) (*table.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have a header row and at least one data row: %w",
			strings.ToUpper(r.fileType), core.ErrEmptyDataset)
	}
	return r.buildTable(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// buildTable converts raw string rows into typed columns
func (r *DataReader) buildTable(rows [][]string) (*table.Table, error) {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	columns := make([]table.Column, len(headers))
	for i, header := range headers {
		columns[i] = table.Column{Name: header, Values: make([]table.Value, len(rows)-1)}
	}

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		for colIdx := range headers {
			var cell string
			if colIdx < len(row) {
				cell = strings.TrimSpace(row[colIdx])
			}

			value := table.NewStringValue(cell)
			if r.numericFields[headers[colIdx]] {
				value = r.coercer.CoerceValue(value)
			}
			columns[colIdx].Values[rowIdx-1] = value
		}
	}

	return table.New(columns...)
}
