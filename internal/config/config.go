package config

import (
	"os"
	"strconv"
	"strings"

	"listinglens/domain/analysis"
	"listinglens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Source   SourceConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
	Output   OutputConfig
	Server   ServerConfig
}

// SourceConfig selects where listings are loaded from
type SourceConfig struct {
	Kind string // "csv", "xlsx" or "postgres"
	File string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL   string
	Table string
}

// AnalysisConfig holds the statistical pipeline settings
type AnalysisConfig struct {
	PriceField      string
	AreaField       string
	GroupField      string
	CapQuantile     float64
	TertileLow      float64
	TertileHigh     float64
	Labels          [3]string
	FamilywiseAlpha float64
}

// OutputConfig holds report output settings
type OutputConfig struct {
	Dir string
}

// ServerConfig holds report server settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg, err := LoadUnvalidated()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnvalidated reads configuration from environment variables without
// validating it, so callers can overlay flag values first
func LoadUnvalidated() (*Config, error) {
	labels, err := ParseLabels(getEnvOrDefault("GROUP_LABELS", "Low,Medium,High"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Source: SourceConfig{
			Kind: strings.ToLower(getEnvOrDefault("LISTINGS_SOURCE", "csv")),
			File: getEnvOrDefault("LISTINGS_FILE", ""),
		},
		Database: DatabaseConfig{
			URL:   getEnvOrDefault("DATABASE_URL", ""),
			Table: getEnvOrDefault("LISTINGS_TABLE", "listings"),
		},
		Analysis: AnalysisConfig{
			PriceField:      getEnvOrDefault("PRICE_FIELD", "price"),
			AreaField:       getEnvOrDefault("AREA_FIELD", "property_sqft"),
			GroupField:      getEnvOrDefault("GROUP_FIELD", "sqft_group"),
			CapQuantile:     getEnvFloatOrDefault("CAP_QUANTILE", 0.99),
			TertileLow:      getEnvFloatOrDefault("TERTILE_LOW", 0.33),
			TertileHigh:     getEnvFloatOrDefault("TERTILE_HIGH", 0.66),
			Labels:          labels,
			FamilywiseAlpha: getEnvFloatOrDefault("FAMILYWISE_ALPHA", 0.05),
		},
		Output: OutputConfig{
			Dir: getEnvOrDefault("OUTPUT_DIR", "./out"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
	}
	return cfg, nil
}

// Validate checks the merged configuration
func (c *Config) Validate() error {
	if err := validateConfig(c); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	return nil
}

// AnalysisSettings translates the env-derived values into pipeline settings
func (c *Config) AnalysisSettings() analysis.Config {
	cfg := analysis.DefaultConfig()
	cfg.PriceField = c.Analysis.PriceField
	cfg.AreaField = c.Analysis.AreaField
	cfg.GroupField = c.Analysis.GroupField
	cfg.CapQuantile = c.Analysis.CapQuantile
	cfg.TertileProbs = [2]float64{c.Analysis.TertileLow, c.Analysis.TertileHigh}
	cfg.Labels = [3]analysis.GroupLabel{
		analysis.GroupLabel(c.Analysis.Labels[0]),
		analysis.GroupLabel(c.Analysis.Labels[1]),
		analysis.GroupLabel(c.Analysis.Labels[2]),
	}
	cfg.FamilywiseAlpha = c.Analysis.FamilywiseAlpha
	return cfg
}

// ParseLabels splits a comma-separated list of exactly three ascending group
// labels
func ParseLabels(s string) ([3]string, error) {
	parts := strings.Split(s, ",")
	var labels [3]string
	if len(parts) != 3 {
		return labels, errors.ConfigInvalid("group labels must be three comma-separated names")
	}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return labels, errors.ConfigInvalid("group labels must be non-empty")
		}
		labels[i] = p
	}
	return labels, nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Source.Kind {
	case "csv", "xlsx":
		if cfg.Source.File == "" {
			return errors.ConfigInvalid("LISTINGS_FILE is required for file sources")
		}
	case "postgres":
		if cfg.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres source")
		}
	default:
		return errors.ConfigInvalid("LISTINGS_SOURCE must be csv, xlsx or postgres")
	}
	if cfg.Analysis.CapQuantile <= 0 || cfg.Analysis.CapQuantile > 1 {
		return errors.ConfigInvalid("CAP_QUANTILE must be in (0, 1]")
	}
	if cfg.Analysis.TertileLow <= 0 || cfg.Analysis.TertileHigh >= 1 ||
		cfg.Analysis.TertileLow >= cfg.Analysis.TertileHigh {
		return errors.ConfigInvalid("tertile probabilities must satisfy 0 < low < high < 1")
	}
	if cfg.Analysis.FamilywiseAlpha <= 0 || cfg.Analysis.FamilywiseAlpha >= 1 {
		return errors.ConfigInvalid("FAMILYWISE_ALPHA must be in (0, 1)")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
