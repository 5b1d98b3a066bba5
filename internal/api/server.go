// Package api exposes the engine's read-only views over HTTP: health,
// prometheus metrics and the analytics endpoints a claim UI polls.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/r0zar/streakwatch/internal/analytics"
	"github.com/r0zar/streakwatch/internal/core/domain"
	"github.com/r0zar/streakwatch/internal/incentive"
	"github.com/r0zar/streakwatch/internal/ingest"
)

// Server serves the analytics API for one partition.
type Server struct {
	engine *incentive.Engine
	agg    *analytics.Aggregator
	syncer *ingest.Syncer
	server *http.Server
}

// NewServer builds the HTTP server on the given port.
func NewServer(engine *incentive.Engine, agg *analytics.Aggregator, syncer *ingest.Syncer, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		engine: engine,
		agg:    agg,
		syncer: syncer,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/analytics/global", s.handleGlobal)
	mux.HandleFunc("GET /v1/analytics/user/{address}", s.handleUser)
	mux.HandleFunc("GET /v1/claim-status/{address}", s.handleClaimStatus)

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	state := s.syncer.Tracker().Load(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "ok",
		"fully_synced":         state.IsFullySynced,
		"last_processed_block": state.LastProcessedBlock,
	})
}

func (s *Server) handleGlobal(w http.ResponseWriter, r *http.Request) {
	ga, err := s.agg.GetGlobalAnalytics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ga)
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	ua, err := s.agg.GetUserAnalytics(r.Context(), r.PathValue("address"))
	if err != nil {
		writeError(w, err)
		return
	}
	if ua == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no claim history"})
		return
	}
	writeJSON(w, http.StatusOK, ua)
}

func (s *Server) handleClaimStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.engine.ClaimStatus(r.Context(), r.PathValue("address"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidAddress) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to encode response", "error", err)
	}
}
