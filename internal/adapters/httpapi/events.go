package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/hlog"
)

const eventsHeartbeatInterval = 15 * time.Second

// handleEvents diffuse en SSE les événements du bus (countdown.updated,
// cycle.tracked) avec un heartbeat périodique. Le nombre de flux
// simultanés est plafonné par le limiter.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.streamLimiter != nil {
		if !s.streamLimiter.TryAcquire() {
			http.Error(w, "too many event streams", http.StatusServiceUnavailable)
			return
		}
		defer s.streamLimiter.Release()
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	streamID := xid.New().String()
	logger := hlog.FromRequest(r).With().Str("stream_id", streamID).Logger()

	ch, cancel := s.bus.Subscribe()
	defer cancel()

	ticker := time.NewTicker(eventsHeartbeatInterval)
	defer ticker.Stop()

	fmt.Fprintf(w, "event: hello\ndata: {\"status\":\"connected\",\"stream\":%q}\n\n", streamID)
	flusher.Flush()
	logger.Debug().Msg("event stream opened")

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Msg("event stream closed")
			return
		case <-ticker.C:
			fmt.Fprintf(w, "event: ping\ndata: {}\n\n")
			flusher.Flush()
		case evt, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Topic, evt.Payload)
			flusher.Flush()
		}
	}
}
