// Package sse is the live-update gateway: one long-lived streaming
// connection per authenticated user, fed from that user's broadcast
// endpoint in the registry.
package sse

import (
	"embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"chat-notify/auth"
	"chat-notify/contract"
	"chat-notify/observability"

	"github.com/gorilla/mux"
)

//go:embed index.html
var indexFS embed.FS

const DefaultKeepAlive = 30 * time.Second

type Server struct {
	log        *slog.Logger
	registry   contract.IRegistry
	verifier   contract.TokenVerifier
	monitoring *observability.MonitoringManager
	keepAlive  time.Duration
}

func NewServer(log *slog.Logger, registry contract.IRegistry,
	verifier contract.TokenVerifier, monitoring *observability.MonitoringManager,
	keepAlive time.Duration) *Server {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &Server{
		log:        log,
		registry:   registry,
		verifier:   verifier,
		monitoring: monitoring,
		keepAlive:  keepAlive,
	}
}

// Router exposes the event stream behind the auth middleware, plus an
// unauthenticated demo page and the operator stats endpoint.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/events", auth.Middleware(s.verifier)(http.HandlerFunc(s.handleEvents))).
		Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := indexFS.ReadFile("index.html")
	if err != nil {
		http.Error(w, "index unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats := s.monitoring.Snapshot(s.registry.Len(), s.registry.Dropped())
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		s.log.Error("Failed to encode stats", "error", err)
	}
}
