package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/samaahar/podcast-gateway/internal/podcast"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Same-origin browser clients only in practice; the progress stream
		// carries no secrets
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const wsWriteTimeout = 10 * time.Second

// handleJobWS streams progress events for one job. Past events are replayed
// first so late subscribers see the full history; the connection closes after
// the terminal event.
func (s *Server) handleJobWS(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	history, live, cancel, ok := s.jobs.Subscribe(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown job")
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", id).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	// Discard client messages; a read error means the client went away
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	writeEvent := func(e podcast.Event) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(e); err != nil {
			s.logger.Debug().Err(err).Str("job_id", id).Msg("WebSocket write failed")
			return false
		}
		return true
	}

	for _, e := range history {
		if !writeEvent(e) {
			return
		}
	}

	for {
		select {
		case e, open := <-live:
			if !open {
				// Job finished; send a normal close and let the client
				// fetch the final status over the API
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"))
				return
			}
			if !writeEvent(e) {
				return
			}
		case <-clientGone:
			return
		}
	}
}
