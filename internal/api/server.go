package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/config"
	"github.com/JakeFAU/spirits-scraper/internal/logging"
	"github.com/JakeFAU/spirits-scraper/internal/metrics"
	"github.com/JakeFAU/spirits-scraper/internal/spirits"
)

// Enqueuer accepts jobs for the worker pool.
type Enqueuer interface {
	Enqueue(ctx context.Context, item spirits.QueueItem) error
}

// Canceler stops running jobs. It reports whether the job was running.
type Canceler interface {
	Cancel(jobID string) bool
}

// Admitter decides which categories may be scraped.
type Admitter interface {
	AllowCategory(category string) bool
	Categories() []string
}

// Deps are the collaborators the handlers use.
type Deps struct {
	JobStore   spirits.JobStore
	Queue      Enqueuer
	Cancels    Canceler
	Repository spirits.Repository
	IDGen      spirits.IDGenerator
	Clock      spirits.Clock
	Logger     *zap.Logger

	// Policy restricts job categories; nil admits all.
	Policy Admitter

	// Ready reports downstream health for /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

// Server wires HTTP handlers to the queue and stores.
type Server struct {
	router chi.Router
	deps   Deps
	cfg    config.Config
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(deps Deps, cfg config.Config) *Server {
	s := &Server{
		deps:   deps,
		cfg:    cfg,
		logger: logging.OrNop(deps.Logger),
	}
	timeout := time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))
	r.Use(metrics.Middleware)
	r.Use(recoverMiddleware(s.logger))
	r.Use(timeoutMiddleware(timeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", s.submitJob)
			r.Route("/{job_id}", func(r chi.Router) {
				r.Get("/status", s.getJobStatus)
				r.Get("/result", s.getJobResult)
				r.Post("/cancel", s.cancelJob)
			})
		})
		r.Post("/dedupe/check", s.dedupeCheck)
		r.Post("/brand/extract", s.brandExtract)
		r.Post("/normalize", s.normalize)
		r.Route("/spirits", func(r chi.Router) {
			r.Get("/search", s.searchSpirits)
			r.Get("/stats", s.spiritStats)
			r.Get("/enrichment", s.needingEnrichment)
		})
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
