package sse

import (
	"fmt"
	"net/http"
	"time"

	"chat-notify/auth"
)

// handleEvents serves one live-update connection. Nothing is emitted
// until an event arrives, there is no history or Last-Event-ID backfill,
// and the stream only ends when either side closes the connection.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserFromContext(r.Context())
	if !ok {
		// Middleware bug rather than a client error.
		http.Error(w, "no identity on request", http.StatusInternalServerError)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := s.registry.Subscribe(userID)
	defer sub.Close()

	s.monitoring.ConnectionOpened()
	defer s.monitoring.ConnectionClosed()
	s.log.Info("Client connected", "user_id", userID)
	defer s.log.Info("Client disconnected", "user_id", userID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			// Comment frame so intermediaries keep the connection open.
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case evt := <-sub.C:
			body, err := evt.Body()
			if err != nil {
				// Drop this frame only, the stream survives.
				s.log.Warn("Failed to serialize event",
					"user_id", userID, "kind", evt.Kind(), "error", err)
				continue
			}
			if _, err := writeFrame(w, evt.Kind(), body); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeFrame emits one SSE frame tagged with the event kind.
func writeFrame(w http.ResponseWriter, kind string, body []byte) (int, error) {
	return fmt.Fprintf(w, "event: %s\ndata: %s\n\n", kind, body)
}
