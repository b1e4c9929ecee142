package postgres

import (
	"context"
	"fmt"

	"listinglens/adapters/coerce"
	"listinglens/domain/table"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ListingSource loads listing records from a Postgres table. It is a
// read-only dataset source: results are never written back.
type ListingSource struct {
	db      *sqlx.DB
	table   string
	fields  []string
	coercer *coerce.NumericCoercer
}

// NewListingSource creates a source reading the given numeric fields from a
// table
func NewListingSource(db *sqlx.DB, tableName string, numericFields []string) *ListingSource {
	return &ListingSource{
		db:      db,
		table:   tableName,
		fields:  numericFields,
		coercer: coerce.NewNumericCoercer(),
	}
}

// Name identifies the source for logs and the run manifest
func (s *ListingSource) Name() string {
	return fmt.Sprintf("postgres:%s", s.table)
}

// Load reads the full dataset, coercing each selected field to numeric.
// Values are selected as text so that currency-formatted columns go through
// the same coercion path as file input.
func (s *ListingSource) Load(ctx context.Context) (*table.Table, error) {
	cols := ""
	for i, field := range s.fields {
		if i > 0 {
			cols += ", "
		}
		cols += fmt.Sprintf("%s::text", pq.QuoteIdentifier(field))
	}
	query := fmt.Sprintf("SELECT %s FROM %s", cols, pq.QuoteIdentifier(s.table))

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	columns := make([]table.Column, len(s.fields))
	for i, field := range s.fields {
		columns[i] = table.Column{Name: field}
	}

	for rows.Next() {
		raw, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		for i := range s.fields {
			var cell interface{}
			if i < len(raw) {
				cell = raw[i]
			}
			columns[i].Values = append(columns[i].Values, s.coerceCell(cell))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listings: %w", err)
	}

	return table.New(columns...)
}

func (s *ListingSource) coerceCell(cell interface{}) table.Value {
	if cell == nil {
		return table.NewMissingValue()
	}
	if b, ok := cell.([]byte); ok {
		cell = string(b)
	}
	return s.coercer.CoerceRaw(cell)
}
