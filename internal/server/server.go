// Package server exposes workflow and schedule state over HTTP. The server
// is read-only: workflows are created and dispatched through the CLI, and
// this surface exists for dashboards and operators polling run progress.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/josephjilovec/quantumflow/internal/errors"
	"github.com/josephjilovec/quantumflow/internal/log"
	"github.com/josephjilovec/quantumflow/internal/store"
	"github.com/josephjilovec/quantumflow/internal/workflow"
)

// Config holds server configuration
type Config struct {
	// Address is the listen address (e.g., ":8080")
	Address string

	// ShutdownTimeout bounds connection draining. Defaults to 30 seconds.
	ShutdownTimeout time.Duration

	// Gatherer serves /metrics; nil selects the default Prometheus gatherer
	Gatherer prometheus.Gatherer

	// Logger defaults to the process-wide logger
	Logger *log.Logger
}

// Server serves workflow definitions, schedules, and metrics
type Server struct {
	httpServer      *http.Server
	store           *store.Store
	workflows       workflow.Store
	shutdownTimeout time.Duration
	logger          *log.Logger
}

// New creates a Server over the given stores
func New(st *store.Store, workflows workflow.Store, cfg Config) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.Logger == nil {
		cfg.Logger = log.DefaultLogger()
	}

	s := &Server{
		store:           st,
		workflows:       workflows,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          cfg.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /workflows", s.handleListWorkflows)
	mux.HandleFunc("GET /workflows/{id}", s.handleGetWorkflow)
	mux.HandleFunc("GET /workflows/{id}/schedule", s.handleGetSchedule)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the server's HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then drains connections. Returns nil
// on clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("status server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.httpServer.SetKeepAlivesEnabled(false)
		return s.httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	defs, err := s.workflows.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, defs)
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := s.workflowID(w, r)
	if !ok {
		return
	}

	def, err := s.workflows.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := s.workflowID(w, r)
	if !ok {
		return
	}

	sched, err := s.store.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sched)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// workflowID parses the {id} path segment; on failure it writes a 400 and
// reports false.
func (s *Server) workflowID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{
			Error: "workflow id must be an integer",
		})
		return 0, false
	}
	return id, true
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps coded errors onto HTTP statuses
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.CodeOf(err) {
	case errors.ErrCodeWorkflowNotFound, errors.ErrCodeStoreNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeWorkflowInvalidTask, errors.ErrCodeStoreInvalidRecord:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.WithError(err).Error("request failed")
	}
	s.writeJSON(w, status, errorBody{
		Error: err.Error(),
		Code:  string(errors.CodeOf(err)),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("encode response")
	}
}
