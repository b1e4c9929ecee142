package ui

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"listinglens/adapters/report"
	"listinglens/internal"
)

func testApp(t *testing.T) (*App, string) {
	t.Helper()
	dir := t.TempDir()
	logger := internal.NewLoggerTo(os.Stderr, internal.LogLevelError)
	app := NewApp(Config{Port: "0", ReportDir: dir}, logger)
	return app, dir
}

func TestSummaryRenderedAsHTML(t *testing.T) {
	app, dir := testApp(t)

	md := "# Listing price analysis\n\n| Group | Count |\n|---|---|\n| Low | 5 |\n"
	if err := os.WriteFile(filepath.Join(dir, report.SummaryFile), []byte(md), 0o644); err != nil {
		t.Fatalf("write summary: %v", err)
	}

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h1") {
		t.Errorf("markdown heading not rendered: %s", body)
	}
	if !strings.Contains(body, "<table") {
		t.Errorf("markdown table not rendered: %s", body)
	}
}

func TestSummaryMissingReport(t *testing.T) {
	app, _ := testApp(t)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestReportJSONEndpoint(t *testing.T) {
	app, dir := testApp(t)

	doc := `{"empty": false}`
	if err := os.WriteFile(filepath.Join(dir, report.ReportJSONFile), []byte(doc), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Body.String() != doc {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestReportJSONMissing(t *testing.T) {
	app, _ := testApp(t)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestStaticPlotServing(t *testing.T) {
	app, dir := testApp(t)

	if err := os.WriteFile(filepath.Join(dir, report.PriceHistogramFile), []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write plot: %v", err)
	}

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+report.PriceHistogramFile, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "png-bytes" {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
}
