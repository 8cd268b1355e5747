// Package api serves the local status HTTP endpoints.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gridbanner/gridbanner/internal/poller"
	"github.com/gridbanner/gridbanner/internal/types"
	"github.com/gridbanner/gridbanner/internal/version"
)

// ReloadFunc re-reads the agent configuration when /api/reload is hit.
type ReloadFunc func() error

// Deps are the collaborators the status server reads from. Accessors are
// funcs so a config reload can swap the loops behind them.
type Deps struct {
	PollStats func() poller.Stats
	Settings  func() *types.GlobalSettings
	Current   func() types.PresentationCommand
	Surfaces  func() int
	Logs      *LogBuffer
	Reload    ReloadFunc
	Gatherer  prometheus.Gatherer
}

// Server is the localhost status API.
type Server struct {
	log       zerolog.Logger
	deps      Deps
	startTime time.Time
	srv       *http.Server
}

// NewServer builds the status server listening on addr.
func NewServer(addr string, deps Deps, log zerolog.Logger) *Server {
	s := &Server{
		log:       log.With().Str("component", "api").Logger(),
		deps:      deps,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/alert", s.handleAlert)
	mux.HandleFunc("/api/logs", s.handleLogs)
	mux.HandleFunc("/api/reload", s.handleReload)
	if deps.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until Stop is called.
func (s *Server) Start() error {
	s.log.Info().Str("address", s.srv.Addr).Msg("status API listening")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the server down within the given context.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":  version.Full(),
		"uptime":   time.Since(s.startTime).Round(time.Second).String(),
		"poll":     s.deps.PollStats(),
		"settings": s.deps.Settings(),
		"surfaces": s.deps.Surfaces(),
	})
}

func (s *Server) handleAlert(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Current())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.deps.Logs == nil {
		http.Error(w, "log buffer not configured", http.StatusNotFound)
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, s.deps.Logs.Recent(limit))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.Reload == nil {
		http.Error(w, "reload not configured", http.StatusNotFound)
		return
	}
	if err := s.deps.Reload(); err != nil {
		s.log.Error().Err(err).Msg("config reload failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
