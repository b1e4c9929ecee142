package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LISTINGS_SOURCE", "LISTINGS_FILE", "DATABASE_URL", "LISTINGS_TABLE",
		"PRICE_FIELD", "AREA_FIELD", "GROUP_FIELD", "CAP_QUANTILE",
		"TERTILE_LOW", "TERTILE_HIGH", "GROUP_LABELS", "FAMILYWISE_ALPHA",
		"OUTPUT_DIR", "PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTINGS_FILE", "listings.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Source.Kind)
	assert.Equal(t, "price", cfg.Analysis.PriceField)
	assert.Equal(t, "property_sqft", cfg.Analysis.AreaField)
	assert.Equal(t, "sqft_group", cfg.Analysis.GroupField)
	assert.Equal(t, 0.99, cfg.Analysis.CapQuantile)
	assert.Equal(t, 0.33, cfg.Analysis.TertileLow)
	assert.Equal(t, 0.66, cfg.Analysis.TertileHigh)
	assert.Equal(t, 0.05, cfg.Analysis.FamilywiseAlpha)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadRequiresFileForCSV(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTINGS_SOURCE", "postgres")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/listings?sslmode=disable")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "listings", cfg.Database.Table)
}

func TestLoadRejectsBadQuantiles(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTINGS_FILE", "listings.csv")

	t.Setenv("CAP_QUANTILE", "1.5")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CAP_QUANTILE", "0.99")
	t.Setenv("TERTILE_LOW", "0.7")
	t.Setenv("TERTILE_HIGH", "0.3")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTINGS_SOURCE", "mongodb")

	_, err := Load()
	assert.Error(t, err)
}

func TestAnalysisSettingsCarryOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTINGS_FILE", "listings.csv")
	t.Setenv("PRICE_FIELD", "list_price")
	t.Setenv("TERTILE_LOW", "0.25")
	t.Setenv("TERTILE_HIGH", "0.75")

	cfg, err := Load()
	require.NoError(t, err)

	settings := cfg.AnalysisSettings()
	assert.Equal(t, "list_price", settings.PriceField)
	assert.Equal(t, [2]float64{0.25, 0.75}, settings.TertileProbs)
}

func TestParseLabels(t *testing.T) {
	labels, err := ParseLabels("Small, Mid ,Large")
	require.NoError(t, err)
	assert.Equal(t, [3]string{"Small", "Mid", "Large"}, labels)

	_, err = ParseLabels("Low,High")
	assert.Error(t, err)

	_, err = ParseLabels("Low,,High")
	assert.Error(t, err)
}

func TestLoadCustomLabels(t *testing.T) {
	clearEnv(t)
	t.Setenv("LISTINGS_FILE", "listings.csv")
	t.Setenv("GROUP_LABELS", "Small,Mid,Large")

	cfg, err := Load()
	require.NoError(t, err)

	settings := cfg.AnalysisSettings()
	assert.Equal(t, "Small", string(settings.Labels[0]))
	assert.Equal(t, "Large", string(settings.Labels[2]))
}
