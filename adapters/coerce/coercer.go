package coerce

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"listinglens/domain/table"
)

// NumericCoercer handles deterministic numeric coercion of currency-formatted
// text fields. Values that fail to parse become missing, never an error:
// downstream aggregates exclude missing values rather than treating them as
// zero.
type NumericCoercer struct{}

// NewNumericCoercer creates a coercer
func NewNumericCoercer() *NumericCoercer {
	return &NumericCoercer{}
}

// CoerceValue converts one cell to a numeric value. Already-numeric values
// pass through unchanged, so coercion is idempotent.
func (c *NumericCoercer) CoerceValue(v table.Value) table.Value {
	if v.IsNumeric() {
		return v
	}
	if v.IsMissing || !v.IsString() {
		return table.NewMissingValue()
	}
	if num, ok := c.tryParseNumeric(v.AsString()); ok {
		return table.NewNumericValue(num)
	}
	return table.NewMissingValue()
}

// CoerceRaw converts an untyped cell as read from a file or scan target
func (c *NumericCoercer) CoerceRaw(raw interface{}) table.Value {
	if raw == nil {
		return table.NewMissingValue()
	}
	switch v := raw.(type) {
	case float64:
		return table.NewNumericValue(v)
	case float32:
		return table.NewNumericValue(float64(v))
	case int:
		return table.NewNumericValue(float64(v))
	case int64:
		return table.NewNumericValue(float64(v))
	case string:
		return c.CoerceValue(table.NewStringValue(v))
	default:
		return c.CoerceValue(table.NewStringValue(fmt.Sprintf("%v", v)))
	}
}

// CoerceColumn rewrites a whole column through CoerceValue, producing a new
// derived table
func (c *NumericCoercer) CoerceColumn(t *table.Table, field string) (*table.Table, error) {
	return t.MapNumeric(field, c.CoerceValue)
}

// tryParseNumeric attempts to parse as numeric with strict rules.
// Handles currency symbols, thousands separators, percentage signs, and
// parentheses for negatives.
func (c *NumericCoercer) tryParseNumeric(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// Parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimPrefix(cleanVal, "(")
		cleanVal = strings.TrimSuffix(cleanVal, ")")
		isNegative = true
	}

	// Strip currency symbols
	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.ReplaceAll(cleanVal, "%", "")

	// Thousands separators
	cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	cleanVal = strings.ReplaceAll(cleanVal, " ", "")

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}
