// Package api provides HTTP and WebSocket API endpoints for the snapshot
// server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/metrics"
	"github.com/Chip777-coder/mirrorx-backend/pkg/snapshot"
)

// Server represents the HTTP API server. Every response is served from the
// snapshot cache; a request never triggers an upstream fetch.
type Server struct {
	addr     string
	reader   *snapshot.Reader
	datasets []string
	server   *http.Server
	logger   *logging.Logger
	tlsCert  string
	tlsKey   string
}

// NewServer creates a new HTTP API server. datasets is the full set of
// configured dataset keys, used when a request does not name any.
func NewServer(addr string, reader *snapshot.Reader, datasets []string, logger *logging.Logger) *Server {
	return &Server{
		addr:     addr,
		reader:   reader,
		datasets: datasets,
		logger:   logger,
	}
}

// SetTLS enables TLS with the given certificate and key files.
func (s *Server) SetTLS(cert, key string) {
	s.tlsCert = cert
	s.tlsKey = key
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/snapshot", s.handleSnapshot)

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr, "tls", s.tlsCert != "")

	var err error
	if s.tlsCert != "" {
		err = s.server.ListenAndServeTLS(s.tlsCert, s.tlsKey)
	} else {
		err = s.server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.logger.Info("Stopping HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// healthDataset is the per-dataset freshness report of the health endpoint.
type healthDataset struct {
	Populated bool       `json:"populated"`
	Stale     bool       `json:"stale"`
	Updated   *time.Time `json:"updated"`
}

// handleHealth handles the /health endpoint. The process is healthy as long
// as it can answer; per-dataset freshness is reported alongside.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RecordHTTPRequest("/health", "200", time.Since(start))
	}()

	snaps := s.reader.Read(r.Context(), s.datasets)
	report := make(map[string]healthDataset, len(snaps))
	for key, snap := range snaps {
		report[key] = healthDataset{
			Populated: snap.Populated(),
			Stale:     snap.Stale,
			Updated:   snap.Updated,
		}
	}

	s.sendJSON(w, map[string]interface{}{
		"status":   "ok",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"datasets": report,
	})
}

// handleSnapshot handles the /v1/snapshot endpoint. The datasets query
// parameter selects keys; without it every configured dataset is returned.
// Unknown keys and never-refreshed keys both come back with a null record.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/v1/snapshot", status, time.Since(start))
	}()

	if r.Method != http.MethodGet {
		status = "405"
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	keys := s.datasets
	if raw := r.URL.Query().Get("datasets"); raw != "" {
		keys = nil
		for _, key := range strings.Split(raw, ",") {
			if key = strings.TrimSpace(key); key != "" {
				keys = append(keys, key)
			}
		}
	}
	if len(keys) == 0 {
		status = "400"
		http.Error(w, "no datasets requested", http.StatusBadRequest)
		return
	}

	s.sendJSON(w, s.reader.Read(r.Context(), keys))
}

// sendJSON sends a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}
