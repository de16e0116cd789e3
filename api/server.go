// Package api provides the HTTP server for the cost-control services.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"natacare-cost/db/clickhouse"
	"natacare-cost/db/postgres"
	"natacare-cost/internal/alerts"
	"natacare-cost/internal/benchmark"
	"natacare-cost/internal/costcontrol"
	"natacare-cost/internal/evm"
	"natacare-cost/internal/forecast"
	"natacare-cost/pkg/api"
)

const version = "1.0.0"

// Config holds server configuration.
type Config struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestSize int64
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxRequestSize: 10 * 1024 * 1024, // 10MB
	}
}

// Server is the HTTP API server. Both stores are optional; without them
// the compute endpoints still work and the persistence endpoints report
// service unavailable.
type Server struct {
	httpServer *http.Server
	service    *costcontrol.Service
	benchmarks *benchmark.Table
	snapshots  *clickhouse.Store
	alertStore *postgres.Store
	config     *Config
	log        zerolog.Logger
}

// NewServer creates a new API server.
func NewServer(service *costcontrol.Service, table *benchmark.Table, config *Config, log zerolog.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if table == nil {
		table = benchmark.Default()
	}
	return &Server{
		service:    service,
		benchmarks: table,
		config:     config,
		log:        log,
	}
}

// WithSnapshotStore enables the trend history endpoints.
func (s *Server) WithSnapshotStore(store *clickhouse.Store) *Server {
	s.snapshots = store
	return s
}

// WithAlertStore enables the alert lifecycle endpoints.
func (s *Server) WithAlertStore(store *postgres.Store) *Server {
	s.alertStore = store
	return s
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/evm", s.handleEVM)
		r.Post("/forecast", s.handleForecast)
		r.Post("/alerts", s.handleAlerts)
		r.Post("/report", s.handleReport)

		r.Get("/projects/{id}/history", s.handleHistory)
		r.Get("/projects/{id}/alerts", s.handleOpenAlerts)
		r.Post("/alerts/{id}/acknowledge", s.handleAcknowledge)
		r.Post("/alerts/{id}/resolve", s.handleResolve)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.log.Info().Int("port", s.config.Port).Str("version", version).Msg("cost-control API server starting")
	return s.httpServer.ListenAndServe()
}

// StartWithGracefulShutdown starts the server and drains it on SIGINT/SIGTERM.
func (s *Server) StartWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		s.log.Info().Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// =============================================================================
// HEALTH ENDPOINTS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "natacare-cost",
		"version": version,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.snapshots != nil {
		if err := s.snapshots.Ping(ctx); err != nil {
			s.jsonError(w, http.StatusServiceUnavailable, "snapshot store not ready")
			return
		}
	}
	if s.alertStore != nil {
		if err := s.alertStore.Ping(ctx); err != nil {
			s.jsonError(w, http.StatusServiceUnavailable, "alert store not ready")
			return
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"version": version,
		"service": "natacare-cost",
	})
}

// =============================================================================
// COMPUTE ENDPOINTS
// =============================================================================

func (s *Server) handleEVM(w http.ResponseWriter, r *http.Request) {
	var input api.ProjectInput
	if !s.decode(w, r, &input) {
		return
	}
	metrics := evm.Calculate(input.WBSLines, input.Finance, input.PhysicalProgress)
	s.jsonResponse(w, http.StatusOK, metrics)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req api.ForecastRequest
	if !s.decode(w, r, &req) {
		return
	}
	fc := forecast.NewGenerator(s.benchmarks).
		WithProjectType(req.ProjectType).
		Generate(req.Metrics)
	s.jsonResponse(w, http.StatusOK, fc)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	var req api.AlertsRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.jsonResponse(w, http.StatusOK, alerts.Generate(req.Metrics, req.Breakdown))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var input api.ProjectInput
	if !s.decode(w, r, &input) {
		return
	}
	report, err := s.service.Run(r.Context(), input)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// =============================================================================
// PERSISTENCE ENDPOINTS
// =============================================================================

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "snapshot store not configured")
		return
	}

	projectID := chi.URLParam(r, "id")
	from, to := timeRange(r)
	snapshots, err := s.snapshots.History(r.Context(), projectID, from, to)
	if err != nil {
		s.log.Error().Err(err).Str("project_id", projectID).Msg("history query failed")
		s.jsonError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	history := make([]api.EVMMetrics, 0, len(snapshots))
	for i := range snapshots {
		history = append(history, snapshots[i].Metrics())
	}
	s.jsonResponse(w, http.StatusOK, history)
}

func (s *Server) handleOpenAlerts(w http.ResponseWriter, r *http.Request) {
	if s.alertStore == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "alert store not configured")
		return
	}

	projectID := chi.URLParam(r, "id")
	open, err := s.alertStore.ListOpen(r.Context(), projectID)
	if err != nil {
		s.log.Error().Err(err).Str("project_id", projectID).Msg("alert query failed")
		s.jsonError(w, http.StatusInternalServerError, "failed to load alerts")
		return
	}
	s.jsonResponse(w, http.StatusOK, open)
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	s.updateAlert(w, r, func(ctx context.Context, id uuid.UUID) error {
		return s.alertStore.Acknowledge(ctx, id)
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	s.updateAlert(w, r, func(ctx context.Context, id uuid.UUID) error {
		return s.alertStore.Resolve(ctx, id)
	})
}

func (s *Server) updateAlert(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) error) {
	if s.alertStore == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "alert store not configured")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid alert id")
		return
	}
	if err := op(r.Context(), id); err != nil {
		s.jsonError(w, http.StatusNotFound, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) jsonError(w http.ResponseWriter, status int, msg string) {
	s.jsonResponse(w, status, api.ErrorResponse{Error: msg})
}

func timeRange(r *http.Request) (time.Time, time.Time) {
	from := time.Now().AddDate(0, -6, 0)
	to := time.Now()
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			from = t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			to = t
		}
	}
	return from, to
}
