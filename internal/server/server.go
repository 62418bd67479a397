package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/aristath/oneglance/internal/database"
	"github.com/aristath/oneglance/internal/modules/dashboard"
	"github.com/aristath/oneglance/internal/modules/ingest"
	"github.com/aristath/oneglance/internal/modules/portfolio"
	"github.com/aristath/oneglance/internal/modules/registry"
	"github.com/aristath/oneglance/internal/modules/scoring"
	"github.com/aristath/oneglance/internal/modules/thesis"
	"github.com/aristath/oneglance/internal/scheduler"
)

// ClassHandlers bundles the HTTP handlers for one asset class. The
// crypto and stocks sides have identical shapes; they differ only in
// which database their repositories point at. Search and Collector are
// optional; their routes are mounted only when a provider exists for
// the class.
type ClassHandlers struct {
	Registry  *registry.Handler
	Ingest    *ingest.Handler
	Scoring   *scoring.Handler
	Portfolio *portfolio.Handler
	Thesis    *thesis.Handler
	Dashboard *dashboard.Handler
	Search    *registry.SearchHandler
	Collector scheduler.Job
}

// Config holds server configuration
type Config struct {
	Port      int
	Log       zerolog.Logger
	Crypto    ClassHandlers
	Stocks    ClassHandlers
	CryptoDB  *database.DB
	StocksDB  *database.DB
	Scheduler *scheduler.Scheduler
	DevMode   bool
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	system *SystemHandlers
	sched  *scheduler.Scheduler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		system: NewSystemHandlers(cfg.Log, cfg.CryptoDB, cfg.StocksDB),
		sched:  cfg.Scheduler,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(cfg Config) {
	s.router.Get("/health", s.system.HandleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.system.HandleHealth)
		r.Route("/crypto", s.classRoutes(cfg.Crypto))
		r.Route("/stocks", s.classRoutes(cfg.Stocks))
	})
}

// classRoutes mounts the per-class module routes
func (s *Server) classRoutes(h ClassHandlers) func(chi.Router) {
	return func(r chi.Router) {
		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.Registry.HandleListAssets)
			r.Post("/", h.Registry.HandleAddAsset)
			if h.Search != nil {
				r.Get("/search", h.Search.HandleSearch)
			}
			r.Delete("/{symbol}", h.Registry.HandleRemoveAsset)
			r.Get("/{symbol}", h.Dashboard.HandleAssetDetail)
			r.Get("/{symbol}/timeline", h.Dashboard.HandleTimeline)
			r.Get("/{symbol}/metrics", h.Dashboard.HandleMetricsRange)
			r.Get("/{symbol}/thesis", h.Thesis.HandleGetNote)
			r.Put("/{symbol}/thesis", h.Thesis.HandleSaveNote)
		})

		r.Get("/dashboard", h.Dashboard.HandleOverview)

		r.Route("/ingest", func(r chi.Router) {
			r.Post("/metrics", h.Ingest.HandleIngestMetrics)
			r.Post("/events", h.Ingest.HandleIngestEvents)
		})

		r.Post("/scores/compute", h.Scoring.HandleCompute)

		if h.Collector != nil {
			r.Post("/collect", s.handleTriggerCollect(h.Collector))
		}

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", h.Portfolio.HandleGetSummary)
			r.Post("/positions", h.Portfolio.HandleAddPosition)
			r.Delete("/positions/{id}", h.Portfolio.HandleRemovePosition)
		})
	}
}

// handleTriggerCollect kicks off the class's collector job in the
// background via the scheduler. Collection can take minutes against
// rate-limited providers, so the request returns immediately; failures
// are logged by RunNow.
func (s *Server) handleTriggerCollect(job scheduler.Job) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.log.Info().Str("job", job.Name()).Msg("Manual collection triggered")
		go func() {
			_ = s.sched.RunNow(job)
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(map[string]string{"triggered": job.Name()}); err != nil {
			s.log.Error().Err(err).Msg("Failed to encode response")
		}
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
