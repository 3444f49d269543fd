package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pekdemirevren/pod2vid/internal/config"
	"github.com/pekdemirevren/pod2vid/internal/jobs"
	"github.com/pekdemirevren/pod2vid/internal/metrics"
	"github.com/pekdemirevren/pod2vid/internal/storage"
)

// Server wires the HTTP API together.
type Server struct {
	httpServer *http.Server
	log        zerolog.Logger
}

// ServerOptions carries the collaborators the API needs.
type ServerOptions struct {
	Config   *config.Config
	Registry *jobs.Registry
	Pool     *jobs.WorkerPool
	Events   *jobs.EventBus
	Store    *storage.LocalStore
	Version  string
	Log      zerolog.Logger
}

// NewServer builds the router and the underlying http.Server.
func NewServer(opts ServerOptions) *Server {
	log := opts.Log.With().Str("component", "api").Logger()
	cfg := opts.Config

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer)
	r.Use(CORS)
	r.Use(metrics.InstrumentHandler)

	health := NewHealthHandler(opts.Pool, opts.Version, time.Now(), cfg.DiarizeEnabled)
	transcriptions := NewTranscriptionsHandler(opts.Registry, opts.Pool, opts.Store, cfg.MaxUploadMB, log)
	events := NewEventsHandler(opts.Events)

	r.Get("/api/v1/health", health.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuth(cfg.AuthToken))
		transcriptions.Routes(r)
		events.Routes(r)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

// Start begins serving. Blocks until the listener stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
