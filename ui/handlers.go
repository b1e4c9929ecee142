package ui

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"listinglens/adapters/report"
)

const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Listing Analysis Report</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; color: #1a1a2e; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #cbd5e1; padding: 0.35rem 0.75rem; text-align: right; }
th { background: #f1f5f9; }
td:first-child, th:first-child { text-align: left; }
img { max-width: 100%%; }
code { background: #f1f5f9; padding: 0.1rem 0.3rem; }
</style>
</head>
<body>
%s
</body>
</html>`

// handleSummary renders summary.md from the report directory as HTML
func (a *App) handleSummary(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(a.reportDir, report.SummaryFile)
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			httpError(w, http.StatusNotFound, "no report found, run an analysis first")
			return
		}
		a.log.Error("reading %s: %v", path, err)
		httpError(w, http.StatusInternalServerError, "failed to read report")
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.Render(p.Parse(src), renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageShell, body)
}

// handleReportJSON serves the machine-readable report document
func (a *App) handleReportJSON(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(a.reportDir, report.ReportJSONFile)
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			httpError(w, http.StatusNotFound, "no report found, run an analysis first")
			return
		}
		a.log.Error("reading %s: %v", path, err)
		httpError(w, http.StatusInternalServerError, "failed to read report")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(src)
}
