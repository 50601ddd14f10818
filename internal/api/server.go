// Package api implements the HTTP layer of the DX scoping diagnostic.
// Handlers are methods on *Server. Each handler file is responsible for one
// resource group and only imports the dependencies it actually uses.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/singleflight"

	"github.com/nyashahama/dx-scoping-backend/internal/cache"
	"github.com/nyashahama/dx-scoping-backend/internal/catalog"
	"github.com/nyashahama/dx-scoping-backend/internal/document"
	"github.com/nyashahama/dx-scoping-backend/internal/metrics"
	"github.com/nyashahama/dx-scoping-backend/internal/scoring"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// Env is "production", "staging", or "development".
	Env string

	// ClampMultiSelect truncates multi-select answers to the catalogue cap
	// before anything else sees them.
	ClampMultiSelect bool

	// CacheTTL is how long a rendered document stays in the cache.
	CacheTTL time.Duration

	// DateLocation is the zone of the creation date stamped on documents
	// when the request does not pin one.
	DateLocation *time.Location
}

// Server holds all shared dependencies. Each handler file attaches methods to
// this type and uses only the fields it needs.
type Server struct {
	cat    *catalog.Catalog
	scorer *scoring.Scorer
	gen    *document.Generator

	// cache stores rendered documents. cache.Nop when Redis is not configured.
	cache cache.Cache

	// renders collapses concurrent identical document requests into one
	// render, keyed by the cache key.
	renders singleflight.Group

	// now is the request clock; tests pin it.
	now func() time.Time

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(
	cat *catalog.Catalog,
	scorer *scoring.Scorer,
	c cache.Cache,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	return newServer(cat, scorer, c, cfg, logger, time.Now).routes()
}

func newServer(
	cat *catalog.Catalog,
	scorer *scoring.Scorer,
	c cache.Cache,
	cfg Config,
	logger *slog.Logger,
	now func() time.Time,
) *Server {
	if c == nil {
		c = cache.Nop{}
	}
	if cfg.DateLocation == nil {
		cfg.DateLocation = time.Local
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return &Server{
		cat:    cat,
		scorer: scorer,
		gen:    document.NewGenerator(cat, scorer),
		cache:  c,
		now:    now,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health / metrics ──────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", metrics.Handler())

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Get("/questions", s.handleListQuestions)
		r.Post("/validate", s.handleValidate)
		r.Post("/diagnose", s.handleDiagnose)
		r.Post("/documents/{kind}", s.handleGenerateDocument)
	})

	return r
}
