// Package server exposes the batch pipeline over HTTP: a trigger endpoint
// that executes a run on demand, plus health and status probes. It carries
// no pipeline state of its own; concurrent triggers rely on the report
// directory's overwrite semantics, with at-most-one-writer guaranteed by
// the deployment.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/riskworks/stability/internal/risk/pipeline"
)

// Config holds trigger server configuration.
type Config struct {
	Addr string
}

// Server is the HTTP trigger server.
type Server struct {
	cfg    Config
	run    pipeline.Runner
	logger *slog.Logger
	mux    *http.ServeMux

	runsExecuted atomic.Int64
	lastRunID    atomic.Value // string
	lastRunAt    atomic.Value // time.Time
}

// New creates a configured trigger server.
func New(cfg Config, run pipeline.Runner, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		run:    run,
		logger: logger,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("/run", s.handleRun)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/status", s.handleStatus)
	return s
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Trigger executes one run and records it in the status counters. Both the
// HTTP endpoint and the cron schedule go through here.
func (s *Server) Trigger(ctx context.Context) (*pipeline.Result, error) {
	res, err := s.run(ctx)
	if err != nil {
		return nil, err
	}
	s.runsExecuted.Add(1)
	s.lastRunID.Store(res.RunID)
	s.lastRunAt.Store(res.StartedAt)
	return res, nil
}

// Start begins listening. Blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // a trigger waits for the whole batch
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("trigger listener starting", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down trigger listener")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	res, err := s.Trigger(r.Context())
	if err != nil {
		s.logger.Error("run failed", "error", err)
		http.Error(w, fmt.Sprintf("run failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"runs_executed": s.runsExecuted.Load(),
	}
	if id, ok := s.lastRunID.Load().(string); ok {
		status["last_run_id"] = id
	}
	if t, ok := s.lastRunAt.Load().(time.Time); ok {
		status["last_run_at"] = t.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
