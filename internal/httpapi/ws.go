package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

type wsInbound struct {
	Message string `json:"message"`
}

type wsOutbound struct {
	TurnID   string `json:"turn_id"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// handleChatWS serves a persistent chat connection: one JSON frame in, one
// JSON frame out per turn. The connection closes when the client does.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer conn.Close()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			return
		}

		turnID := uuid.NewString()
		if in.Message == "" {
			if err := conn.WriteJSON(wsOutbound{TurnID: turnID, Error: "message must not be empty"}); err != nil {
				return
			}
			continue
		}

		reply := s.orchestrator.Process(r.Context(), in.Message)
		if err := conn.WriteJSON(wsOutbound{TurnID: turnID, Response: reply}); err != nil {
			slog.Debug("ws write failed", "error", err)
			return
		}
	}
}
