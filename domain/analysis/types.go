package analysis

import (
	"fmt"
	"math"
	"strings"

	"listinglens/domain/core"
)

// GroupLabel names one of the ordered size buckets
type GroupLabel string

// DefaultLabels is the fixed ascending order of the derived size groups
var DefaultLabels = [3]GroupLabel{"Low", "Medium", "High"}

// Config carries the tunable knobs of the analysis pipeline. Zero values are
// replaced by defaults via Normalize.
type Config struct {
	PriceField      string        `json:"price_field"`
	AreaField       string        `json:"area_field"`
	GroupField      string        `json:"group_field"`
	CapQuantile     float64       `json:"cap_quantile"`     // outlier cap, default 0.99
	TertileProbs    [2]float64    `json:"tertile_probs"`    // default {0.33, 0.66}
	Labels          [3]GroupLabel `json:"labels"`           // ascending order
	FamilywiseAlpha float64       `json:"familywise_alpha"` // Tukey HSD, default 0.05
}

// DefaultConfig returns the standard pipeline configuration
func DefaultConfig() Config {
	return Config{
		PriceField:      "price",
		AreaField:       "property_sqft",
		GroupField:      "sqft_group",
		CapQuantile:     0.99,
		TertileProbs:    [2]float64{0.33, 0.66},
		Labels:          DefaultLabels,
		FamilywiseAlpha: 0.05,
	}
}

// Normalize fills unset knobs with defaults and validates ranges
func (c Config) Normalize() (Config, error) {
	def := DefaultConfig()
	if c.PriceField == "" {
		c.PriceField = def.PriceField
	}
	if c.AreaField == "" {
		c.AreaField = def.AreaField
	}
	if c.GroupField == "" {
		c.GroupField = def.GroupField
	}
	if c.CapQuantile == 0 {
		c.CapQuantile = def.CapQuantile
	}
	if c.TertileProbs == [2]float64{} {
		c.TertileProbs = def.TertileProbs
	}
	if c.Labels == [3]GroupLabel{} {
		c.Labels = def.Labels
	}
	if c.FamilywiseAlpha == 0 {
		c.FamilywiseAlpha = def.FamilywiseAlpha
	}

	if c.CapQuantile < 0 || c.CapQuantile > 1 {
		return c, core.NewValidationError("cap_quantile", "must be in [0, 1]")
	}
	if c.TertileProbs[0] <= 0 || c.TertileProbs[1] >= 1 || c.TertileProbs[0] >= c.TertileProbs[1] {
		return c, core.NewValidationError("tertile_probs", "must satisfy 0 < p1 < p2 < 1")
	}
	if c.FamilywiseAlpha <= 0 || c.FamilywiseAlpha >= 1 {
		return c, core.NewValidationError("familywise_alpha", "must be in (0, 1)")
	}
	return c, nil
}

// Boundaries holds the tertile cutoffs over the filtered area field.
// Low = [Min, QLow], Medium = (QLow, QHigh], High = (QHigh, Max].
type Boundaries struct {
	Min   float64 `json:"min"`
	QLow  float64 `json:"q_low"`
	QHigh float64 `json:"q_high"`
	Max   float64 `json:"max"`
}

// GroupSummary aggregates price within one size group
type GroupSummary struct {
	Label  GroupLabel `json:"label"`
	Count  int        `json:"count"`
	Mean   float64    `json:"mean"`
	Median float64    `json:"median"`
	StdDev float64    `json:"std_dev"` // sample (Bessel-corrected); NaN when n < 2
}

// ReasonCode explains an undefined statistical result
type ReasonCode string

const (
	ReasonNone               ReasonCode = ""
	ReasonInsufficientGroups ReasonCode = "INSUFFICIENT_GROUPS"
	ReasonDegenerateVariance ReasonCode = "DEGENERATE_VARIANCE"
	ReasonNoData             ReasonCode = "NO_DATA"
)

// AnovaResult is the one-way sum-of-squares decomposition of price against
// the size-group factor
type AnovaResult struct {
	GroupMeans map[GroupLabel]float64 `json:"group_means"`
	GrandMean  float64                `json:"grand_mean"`
	BetweenSS  float64                `json:"between_ss"`
	WithinSS   float64                `json:"within_ss"`
	DFBetween  int                    `json:"df_between"`
	DFWithin   int                    `json:"df_within"`
	FStatistic float64                `json:"f_statistic"`
	PValue     float64                `json:"p_value"`
	Reason     ReasonCode             `json:"reason,omitempty"`
}

// Defined reports whether the F statistic and p-value are interpretable
func (r AnovaResult) Defined() bool {
	return r.Reason == ReasonNone && !math.IsNaN(r.FStatistic)
}

// TotalSS returns the total sum of squared deviations from the grand mean
func (r AnovaResult) TotalSS() float64 {
	return r.BetweenSS + r.WithinSS
}

// PostHocComparison is one Tukey HSD pairwise result
type PostHocComparison struct {
	GroupA    GroupLabel `json:"group_a"`
	GroupB    GroupLabel `json:"group_b"`
	MeanDiff  float64    `json:"mean_diff"` // mean(B) - mean(A)
	CILower   float64    `json:"ci_lower"`
	CIUpper   float64    `json:"ci_upper"`
	AdjustedP float64    `json:"adjusted_p"`
}

// Pair renders the comparison key in a stable "B-A" form
func (p PostHocComparison) Pair() string {
	return fmt.Sprintf("%s-%s", p.GroupB, p.GroupA)
}

// Significant reports whether the adjusted p clears the family-wise level
func (p PostHocComparison) Significant(alpha float64) bool {
	return !math.IsNaN(p.AdjustedP) && p.AdjustedP < alpha
}

// RunManifest captures audit metadata for one analysis run
type RunManifest struct {
	RunID         core.RunID         `json:"run_id"`
	Config        Config             `json:"config"`
	InputRows     int                `json:"input_rows"`
	RetainedRows  int                `json:"retained_rows"`
	CapThresholds map[string]float64 `json:"cap_thresholds"`
	Boundaries    Boundaries         `json:"boundaries"`
	RuntimeMs     int64              `json:"runtime_ms"`
	Fingerprint   core.Hash          `json:"fingerprint"`
	CreatedAt     core.Timestamp     `json:"created_at"`
}

// ComputeFingerprint builds a deterministic fingerprint over the run's
// inputs and thresholds so identical runs can be recognized
func (m *RunManifest) ComputeFingerprint() core.Hash {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%.6f|%.6f|%.6f", m.Config.PriceField, m.Config.AreaField,
		m.Config.CapQuantile, m.Config.TertileProbs[0], m.Config.TertileProbs[1])
	fmt.Fprintf(&b, "|%d|%d", m.InputRows, m.RetainedRows)
	fmt.Fprintf(&b, "|%.6f|%.6f|%.6f|%.6f", m.Boundaries.Min, m.Boundaries.QLow, m.Boundaries.QHigh, m.Boundaries.Max)
	return core.NewHash([]byte(b.String()))
}

// Report is the complete output of one analysis run, handed to the report
// emitter and the read-only server
type Report struct {
	Manifest  RunManifest         `json:"manifest"`
	Summaries []GroupSummary      `json:"summaries"`
	Anova     AnovaResult         `json:"anova"`
	PostHoc   []PostHocComparison `json:"post_hoc"`
	Empty     bool                `json:"empty"` // zero rows survived filtering
}
