package ports

import (
	"context"

	"listinglens/domain/analysis"
	"listinglens/domain/table"
)

// ReportEmitter renders the diagnostic plots and the textual summary of one
// completed run. It is a thin external collaborator of the core pipeline:
// output paths are explicit parameters, never global working-directory state.
type ReportEmitter interface {
	// Emit writes plots and summaries for the grouped dataset and results
	// into the emitter's output directory
	Emit(ctx context.Context, grouped *table.Table, report *analysis.Report) error
}
