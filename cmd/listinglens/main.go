package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"listinglens/adapters/postgres"
	"listinglens/adapters/report"
	"listinglens/adapters/tabfile"
	"listinglens/app"
	"listinglens/internal"
	"listinglens/internal/config"
	"listinglens/ports"
	"listinglens/ui"
)

func main() {
	// Missing .env is fine, plain environment variables still apply
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "listinglens",
		Short: "Exploratory price analysis for real-estate listings",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runFlags struct {
	source      string
	file        string
	dbURL       string
	table       string
	priceField  string
	areaField   string
	capQuantile float64
	tertiles    string
	labels      string
	alpha       float64
	outDir      string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "Dataset source: csv, xlsx or postgres")
	cmd.Flags().StringVar(&f.file, "file", "", "Path to the listings file for csv/xlsx sources")
	cmd.Flags().StringVar(&f.dbURL, "db-url", "", "Postgres connection URL")
	cmd.Flags().StringVar(&f.table, "table", "", "Postgres table holding the listings")
	cmd.Flags().StringVar(&f.priceField, "price-field", "", "Name of the price column")
	cmd.Flags().StringVar(&f.areaField, "area-field", "", "Name of the square-footage column")
	cmd.Flags().Float64Var(&f.capQuantile, "cap-quantile", 0, "Outlier cap quantile, e.g. 0.99")
	cmd.Flags().StringVar(&f.tertiles, "tertiles", "", "Tertile cut probabilities as low,high, e.g. 0.33,0.66")
	cmd.Flags().StringVar(&f.labels, "labels", "", "Three ascending group labels, e.g. Low,Medium,High")
	cmd.Flags().Float64Var(&f.alpha, "alpha", 0, "Familywise significance level for post-hoc tests")
	cmd.Flags().StringVar(&f.outDir, "out", "", "Directory for the report and plots")
}

// apply overlays non-empty flag values onto the env-derived configuration
func (f *runFlags) apply(cfg *config.Config) error {
	if f.source != "" {
		cfg.Source.Kind = f.source
	}
	if f.file != "" {
		cfg.Source.File = f.file
	}
	if f.dbURL != "" {
		cfg.Database.URL = f.dbURL
	}
	if f.table != "" {
		cfg.Database.Table = f.table
	}
	if f.priceField != "" {
		cfg.Analysis.PriceField = f.priceField
	}
	if f.areaField != "" {
		cfg.Analysis.AreaField = f.areaField
	}
	if f.capQuantile > 0 {
		cfg.Analysis.CapQuantile = f.capQuantile
	}
	if f.tertiles != "" {
		if _, err := fmt.Sscanf(f.tertiles, "%f,%f", &cfg.Analysis.TertileLow, &cfg.Analysis.TertileHigh); err != nil {
			return fmt.Errorf("invalid --tertiles %q: expected low,high", f.tertiles)
		}
	}
	if f.labels != "" {
		labels, err := config.ParseLabels(f.labels)
		if err != nil {
			return err
		}
		cfg.Analysis.Labels = labels
	}
	if f.alpha > 0 {
		cfg.Analysis.FamilywiseAlpha = f.alpha
	}
	if f.outDir != "" {
		cfg.Output.Dir = f.outDir
	}
	return nil
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load listings, run the price analysis and write the report",
		Long: `Load a listings dataset, coerce price and square footage to numbers,
cap price outliers, bin listings into square-footage tertiles and compare
mean prices across the tertiles with one-way ANOVA and Tukey HSD.

Example: listinglens run --source csv --file listings.csv --out ./out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(&flags)
			if err != nil {
				return err
			}
			logger := internal.NewDefaultLogger()

			source, cleanup, err := buildSource(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			service := app.NewAnalysisService()
			result, err := service.Run(cmd.Context(), app.AnalysisRequest{
				Source: source,
				Config: cfg.AnalysisSettings(),
			})
			if err != nil {
				return err
			}

			var emitter ports.ReportEmitter = report.NewEmitter(cfg.Output.Dir)
			if err := emitter.Emit(cmd.Context(), result.Grouped, result.Report); err != nil {
				return err
			}

			m := result.Report.Manifest
			logger.Info("run %s finished: %d of %d rows retained, report in %s",
				m.RunID, m.RetainedRows, m.InputRows, cfg.Output.Dir)
			fmt.Printf("report written to %s\n", cfg.Output.Dir)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newServeCmd() *cobra.Command {
	var outDir string
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a finished report over HTTP",
		Long: `Serve the summary, plots and JSON document of a previously
generated report directory.

Example: listinglens serve --out ./out --port 8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if outDir != "" {
				cfg.Output.Dir = outDir
			}
			if port != "" {
				cfg.Server.Port = port
			}

			logger := internal.NewDefaultLogger()
			server := ui.NewApp(ui.Config{
				Port:      cfg.Server.Port,
				ReportDir: cfg.Output.Dir,
			}, logger)
			return server.Start(cfg.Server.Port)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "Report directory to serve")
	cmd.Flags().StringVar(&port, "port", "", "HTTP port")
	return cmd
}

// loadConfig merges flag overrides into the env configuration, then validates
func loadConfig(flags *runFlags) (*config.Config, error) {
	// Flags may supply values validation requires, so validate only after
	// the overlay.
	cfg, err := config.LoadUnvalidated()
	if err != nil {
		return nil, err
	}
	if err := flags.apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildSource constructs the dataset source named by the configuration
func buildSource(cfg *config.Config) (ports.DatasetSource, func(), error) {
	numericFields := []string{cfg.Analysis.PriceField, cfg.Analysis.AreaField}

	switch cfg.Source.Kind {
	case "csv", "xlsx":
		return tabfile.NewDataReader(cfg.Source.File, numericFields), func() {}, nil
	case "postgres":
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		source := postgres.NewListingSource(db, cfg.Database.Table, numericFields)
		return source, func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
	}
}
