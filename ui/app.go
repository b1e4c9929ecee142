package ui

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"listinglens/internal"
)

// App serves a finished report directory over HTTP
type App struct {
	router    *chi.Mux
	reportDir string
	log       *internal.Logger
}

// Config holds report server configuration
type Config struct {
	Port      string
	ReportDir string
}

// NewApp creates a new report server rooted at the given report directory
func NewApp(config Config, logger *internal.Logger) *App {
	app := &App{
		router:    chi.NewRouter(),
		reportDir: config.ReportDir,
		log:       logger.With("ui"),
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleSummary)
	a.router.Get("/api/report", a.handleReportJSON)

	// Plots and raw report files live next to summary.md
	files := http.FileServer(http.Dir(a.reportDir))
	a.router.Handle("/*", files)
}

// Start starts the HTTP server on the given port
func (a *App) Start(port string) error {
	addr := ":" + port
	a.log.Info("serving report from %s on %s", a.reportDir, addr)
	return http.ListenAndServe(addr, a.router)
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

func httpError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	http.Error(w, fmt.Sprintf(format, args...), status)
}
