package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"listinglens/domain/analysis"
)

// writeSummary renders the markdown report body
func writeSummary(path string, rep *analysis.Report) error {
	var b strings.Builder
	m := rep.Manifest

	fmt.Fprintf(&b, "# Listing price analysis\n\n")
	fmt.Fprintf(&b, "Run `%s`\n\n", m.RunID)
	fmt.Fprintf(&b, "- Input rows: %d\n", m.InputRows)
	fmt.Fprintf(&b, "- Retained after %.0fth-percentile cap: %d\n", m.Config.CapQuantile*100, m.RetainedRows)
	for field, threshold := range m.CapThresholds {
		fmt.Fprintf(&b, "- Cap threshold `%s`: %s\n", field, num(threshold))
	}

	if rep.Empty {
		fmt.Fprintf(&b, "\n**No data survived filtering; all statistics are undefined.**\n")
		return os.WriteFile(path, []byte(b.String()), 0o644)
	}

	fmt.Fprintf(&b, "- Tertile boundaries (`%s`): min %s, q %s, q %s, max %s\n\n",
		m.Config.AreaField, num(m.Boundaries.Min), num(m.Boundaries.QLow), num(m.Boundaries.QHigh), num(m.Boundaries.Max))

	fmt.Fprintf(&b, "## Group summaries\n\n")
	fmt.Fprintf(&b, "| Group | Count | Mean | Median | Std dev |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	for _, s := range rep.Summaries {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s |\n", s.Label, s.Count, num(s.Mean), num(s.Median), num(s.StdDev))
	}

	fmt.Fprintf(&b, "\n## One-way ANOVA\n\n")
	a := rep.Anova
	if !a.Defined() {
		fmt.Fprintf(&b, "Result undefined (%s).\n", a.Reason)
	} else {
		fmt.Fprintf(&b, "| Source | SS | df | F | p |\n")
		fmt.Fprintf(&b, "|---|---|---|---|---|\n")
		fmt.Fprintf(&b, "| Between groups | %s | %d | %s | %s |\n", num(a.BetweenSS), a.DFBetween, num(a.FStatistic), num(a.PValue))
		fmt.Fprintf(&b, "| Within groups | %s | %d | | |\n", num(a.WithinSS), a.DFWithin)
	}

	if len(rep.PostHoc) > 0 {
		alpha := m.Config.FamilywiseAlpha
		fmt.Fprintf(&b, "\n## Tukey HSD (family-wise alpha %.2f)\n\n", alpha)
		fmt.Fprintf(&b, "| Pair | Diff | CI lower | CI upper | Adjusted p | |\n")
		fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
		for _, c := range rep.PostHoc {
			marker := ""
			if c.Significant(alpha) {
				marker = "*"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
				c.Pair(), num(c.MeanDiff), num(c.CILower), num(c.CIUpper), num(c.AdjustedP), marker)
		}
	}

	fmt.Fprintf(&b, "\n## Plots\n\n")
	fmt.Fprintf(&b, "![price histogram](%s)\n\n", PriceHistogramFile)
	fmt.Fprintf(&b, "![price by group](%s)\n\n", GroupBoxPlotFile)
	fmt.Fprintf(&b, "![area vs price](%s)\n", ScatterFile)

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// writeReportJSON persists the machine-readable report next to the summary
func writeReportJSON(path string, rep *analysis.Report) error {
	data, err := json.MarshalIndent(sanitizeForJSON(rep), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// sanitizeForJSON replaces NaN/Inf leaves, which encoding/json rejects, with
// nulls by round-tripping through a generic map
func sanitizeForJSON(rep *analysis.Report) interface{} {
	return map[string]interface{}{
		"manifest":  sanitizeManifest(rep.Manifest),
		"summaries": sanitizeSummaries(rep.Summaries),
		"anova": map[string]interface{}{
			"group_means": sanitizeMeans(rep.Anova.GroupMeans),
			"grand_mean":  jsonNum(rep.Anova.GrandMean),
			"between_ss":  jsonNum(rep.Anova.BetweenSS),
			"within_ss":   jsonNum(rep.Anova.WithinSS),
			"df_between":  rep.Anova.DFBetween,
			"df_within":   rep.Anova.DFWithin,
			"f_statistic": jsonNum(rep.Anova.FStatistic),
			"p_value":     jsonNum(rep.Anova.PValue),
			"reason":      string(rep.Anova.Reason),
		},
		"post_hoc": sanitizePostHoc(rep.PostHoc),
		"empty":    rep.Empty,
	}
}

// sanitizeManifest handles the two manifest fields that can carry NaN: cap
// thresholds over all-missing columns and undefined tertile boundaries
func sanitizeManifest(m analysis.RunManifest) map[string]interface{} {
	thresholds := make(map[string]interface{}, len(m.CapThresholds))
	for field, v := range m.CapThresholds {
		thresholds[field] = jsonNum(v)
	}
	return map[string]interface{}{
		"run_id":         m.RunID,
		"config":         m.Config,
		"input_rows":     m.InputRows,
		"retained_rows":  m.RetainedRows,
		"cap_thresholds": thresholds,
		"boundaries": map[string]interface{}{
			"min":    jsonNum(m.Boundaries.Min),
			"q_low":  jsonNum(m.Boundaries.QLow),
			"q_high": jsonNum(m.Boundaries.QHigh),
			"max":    jsonNum(m.Boundaries.Max),
		},
		"runtime_ms":  m.RuntimeMs,
		"fingerprint": m.Fingerprint,
		"created_at":  m.CreatedAt,
	}
}

func sanitizeSummaries(summaries []analysis.GroupSummary) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, map[string]interface{}{
			"label":   string(s.Label),
			"count":   s.Count,
			"mean":    jsonNum(s.Mean),
			"median":  jsonNum(s.Median),
			"std_dev": jsonNum(s.StdDev),
		})
	}
	return out
}

func sanitizeMeans(means map[analysis.GroupLabel]float64) map[string]interface{} {
	out := make(map[string]interface{}, len(means))
	for label, mean := range means {
		out[string(label)] = jsonNum(mean)
	}
	return out
}

func sanitizePostHoc(comparisons []analysis.PostHocComparison) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(comparisons))
	for _, c := range comparisons {
		out = append(out, map[string]interface{}{
			"pair":       c.Pair(),
			"mean_diff":  jsonNum(c.MeanDiff),
			"ci_lower":   jsonNum(c.CILower),
			"ci_upper":   jsonNum(c.CIUpper),
			"adjusted_p": jsonNum(c.AdjustedP),
		})
	}
	return out
}

func jsonNum(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// num renders a float for the markdown tables, keeping NaN visible
func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 0) {
		return "Inf"
	}
	return fmt.Sprintf("%.4g", v)
}
