package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Structural errors: these halt the pipeline
	ErrMissingField = errors.New("required field missing from dataset")
	ErrEmptyDataset = errors.New("dataset contains no records")

	// Analysis errors: surfaced as coded results, not panics
	ErrNoData             = errors.New("no data after filtering")
	ErrInsufficientGroups = errors.New("fewer than two non-empty groups")
	ErrInsufficientData   = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewMissingFieldError(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsStructuralError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrEmptyDataset)
}

func IsNoDataError(err error) bool {
	return errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrInsufficientGroups) ||
		errors.Is(err, ErrInsufficientData)
}
