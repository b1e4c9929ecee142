package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"listinglens/adapters/coerce"
	"listinglens/adapters/stats/engine"
	"listinglens/adapters/stats/stages"
	"listinglens/domain/analysis"
	"listinglens/domain/core"
	"listinglens/domain/table"
	"listinglens/ports"
)

// AnalysisService runs the listing price pipeline: numeric coercion,
// outlier capping, tertile grouping, then group summaries, one-way ANOVA,
// and Tukey HSD. The pipeline is synchronous and deterministic; every stage
// produces a new derived table view.
type AnalysisService struct {
	coercer *coerce.NumericCoercer
	anova   *engine.AnovaEngine
	tukey   *engine.TukeyEngine
}

// AnalysisRequest defines the inputs for one run
type AnalysisRequest struct {
	Source ports.DatasetSource
	Config analysis.Config
	RunID  core.RunID // optional, generated if empty
}

// AnalysisResult pairs the grouped dataset view with the report
type AnalysisResult struct {
	Grouped *table.Table
	Report  *analysis.Report
}

// NewAnalysisService creates the pipeline service
func NewAnalysisService() *AnalysisService {
	return &AnalysisService{
		coercer: coerce.NewNumericCoercer(),
		anova:   engine.NewAnovaEngine(),
		tukey:   engine.NewTukeyEngine(),
	}
}

// Run executes the full pipeline. Structural problems (missing required
// column, empty input) return an error naming the field; numeric edge cases
// propagate as NaN sentinels inside the report instead.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	startTime := time.Now()

	cfg, err := req.Config.Normalize()
	if err != nil {
		return nil, err
	}

	runID := req.RunID
	if runID == "" {
		runID = core.RunID(core.NewID())
	}

	raw, err := req.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataset load failed: %w", err)
	}
	if raw.NumRows() == 0 {
		return nil, core.ErrEmptyDataset
	}
	for _, field := range []string{cfg.PriceField, cfg.AreaField} {
		if !raw.HasColumn(field) {
			return nil, core.NewMissingFieldError(field)
		}
	}

	grouped, report, err := s.analyze(raw, cfg)
	if err != nil {
		return nil, err
	}

	report.Manifest.RunID = runID
	report.Manifest.RuntimeMs = time.Since(startTime).Milliseconds()
	report.Manifest.Fingerprint = report.Manifest.ComputeFingerprint()
	report.Manifest.CreatedAt = core.Now()

	return &AnalysisResult{Grouped: grouped, Report: report}, nil
}

func (s *AnalysisService) analyze(raw *table.Table, cfg analysis.Config) (*table.Table, *analysis.Report, error) {
	numericFields := []string{cfg.PriceField, cfg.AreaField}

	// Coercion: unparseable cells become missing, never an error
	coerced := raw
	var err error
	for _, field := range numericFields {
		coerced, err = s.coercer.CoerceColumn(coerced, field)
		if err != nil {
			return nil, nil, err
		}
	}

	capper := stages.NewCapper(cfg.CapQuantile)
	filtered, thresholds, err := capper.Apply(coerced, numericFields)
	if err != nil {
		return nil, nil, err
	}

	report := &analysis.Report{
		Manifest: analysis.RunManifest{
			Config:        cfg,
			InputRows:     raw.NumRows(),
			RetainedRows:  filtered.NumRows(),
			CapThresholds: thresholds,
		},
	}

	// Zero rows after filtering is an explicit no-data report, not a
	// silent zero
	if filtered.NumRows() == 0 {
		report.Empty = true
		report.Anova = analysis.AnovaResult{
			GroupMeans: map[analysis.GroupLabel]float64{},
			GrandMean:  math.NaN(),
			FStatistic: math.NaN(),
			PValue:     math.NaN(),
			Reason:     analysis.ReasonNoData,
		}
		report.Summaries = emptySummaries(cfg.Labels)
		return filtered, report, nil
	}

	grouper := stages.NewGrouper(cfg.TertileProbs, cfg.Labels)
	grouped, bounds, err := grouper.Apply(filtered, cfg.AreaField, cfg.GroupField)
	if err != nil {
		return nil, nil, err
	}
	report.Manifest.Boundaries = bounds

	summarizer := stages.NewSummarizer(cfg.Labels)
	report.Summaries, err = summarizer.Summarize(grouped, cfg.PriceField, cfg.GroupField)
	if err != nil {
		return nil, nil, err
	}

	groups, err := stages.SplitByGroup(grouped, cfg.PriceField, cfg.GroupField)
	if err != nil {
		return nil, nil, err
	}
	report.Anova = s.anova.OneWay(groups)
	if report.Anova.DFWithin > 0 {
		report.PostHoc = s.tukey.HSD(groups, cfg.Labels[:], report.Anova, cfg.FamilywiseAlpha)
	}

	return grouped, report, nil
}

func emptySummaries(labels [3]analysis.GroupLabel) []analysis.GroupSummary {
	summaries := make([]analysis.GroupSummary, 0, len(labels))
	for _, label := range labels {
		summaries = append(summaries, analysis.GroupSummary{
			Label:  label,
			Mean:   math.NaN(),
			Median: math.NaN(),
			StdDev: math.NaN(),
		})
	}
	return summaries
}
