package report

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"listinglens/domain/analysis"
	"listinglens/domain/table"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Output file names inside the run's output directory
const (
	PriceHistogramFile = "price_histogram.png"
	GroupBoxPlotFile   = "price_by_group_boxplot.png"
	ScatterFile        = "sqft_vs_price_scatter.png"
	SummaryFile        = "summary.md"
	ReportJSONFile     = "report.json"
)

// Emitter renders the three diagnostic plots and the markdown summary for a
// completed run. The output directory is an explicit parameter; the emitter
// never touches process-global working-directory state.
type Emitter struct {
	outDir string
}

// NewEmitter creates an emitter writing into outDir
func NewEmitter(outDir string) *Emitter {
	return &Emitter{outDir: outDir}
}

// OutDir returns the output directory
func (e *Emitter) OutDir() string {
	return e.outDir
}

// Emit writes plots and summaries for the grouped dataset and results
func (e *Emitter) Emit(ctx context.Context, grouped *table.Table, rep *analysis.Report) error {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeSummary(filepath.Join(e.outDir, SummaryFile), rep); err != nil {
		return err
	}
	if err := writeReportJSON(filepath.Join(e.outDir, ReportJSONFile), rep); err != nil {
		return err
	}
	if rep.Empty {
		return nil
	}

	cfg := rep.Manifest.Config
	prices, err := grouped.Numeric(cfg.PriceField)
	if err != nil {
		return err
	}
	areas, err := grouped.Numeric(cfg.AreaField)
	if err != nil {
		return err
	}
	labels, err := grouped.Labels(cfg.GroupField)
	if err != nil {
		return err
	}

	// The plots are independent; render them concurrently.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.renderHistogram(prices, cfg.PriceField)
	})
	g.Go(func() error {
		return e.renderBoxPlot(prices, labels, cfg)
	})
	g.Go(func() error {
		return e.renderScatter(areas, prices, cfg)
	})
	return g.Wait()
}

func (e *Emitter) renderHistogram(prices []float64, priceField string) error {
	values := finiteValues(prices)
	if len(values) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "Distribution of " + priceField
	p.X.Label.Text = priceField
	p.Y.Label.Text = "count"

	hist, err := plotter.NewHist(values, 30)
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	p.Add(hist)

	return p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join(e.outDir, PriceHistogramFile))
}

func (e *Emitter) renderBoxPlot(prices []float64, labels []string, cfg analysis.Config) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s by %s", cfg.PriceField, cfg.GroupField)
	p.Y.Label.Text = cfg.PriceField

	names := make([]string, 0, len(cfg.Labels))
	position := 0.0
	for _, label := range cfg.Labels {
		values := make(plotter.Values, 0)
		for i, price := range prices {
			if labels[i] == string(label) && !math.IsNaN(price) {
				values = append(values, price)
			}
		}
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(30), position, values)
		if err != nil {
			return fmt.Errorf("failed to build box plot for %s: %w", label, err)
		}
		p.Add(box)
		names = append(names, string(label))
		position++
	}
	if len(names) == 0 {
		return nil
	}
	p.NominalX(names...)

	return p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join(e.outDir, GroupBoxPlotFile))
}

func (e *Emitter) renderScatter(areas, prices []float64, cfg analysis.Config) error {
	pts := make(plotter.XYs, 0, len(prices))
	for i := range prices {
		if math.IsNaN(areas[i]) || math.IsNaN(prices[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: areas[i], Y: prices[i]})
	}
	if len(pts) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", cfg.AreaField, cfg.PriceField)
	p.X.Label.Text = cfg.AreaField
	p.Y.Label.Text = cfg.PriceField

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build scatter plot: %w", err)
	}
	p.Add(scatter)

	return p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join(e.outDir, ScatterFile))
}

func finiteValues(data []float64) plotter.Values {
	values := make(plotter.Values, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			values = append(values, v)
		}
	}
	return values
}
