package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/richinex/galactic/session"
)

// wsMessage is the frame format in both directions.
type wsMessage struct {
	Type      string        `json:"type"`
	SessionID string        `json:"session_id,omitempty"`
	Text      string        `json:"text,omitempty"`
	Turn      *turnResponse `json:"turn,omitempty"`
	Error     string        `json:"error,omitempty"`
}

const (
	wsTypeSession = "session"
	wsTypeMessage = "message"
	wsTypeTurn    = "turn"
	wsTypePurge   = "purge"
	wsTypeError   = "error"
)

// handleWebSocket serves a chat over one connection. The session comes
// from ?session=<id>, or a new one is created and announced first.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	var (
		sess *session.Session
		err  error
	)
	if id := r.URL.Query().Get("session"); id != "" {
		sess, err = s.sessions.Get(r.Context(), id)
		if errors.Is(err, session.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
			return
		}
	} else {
		sess, err = s.sessions.Create()
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	log := s.logger.With("session", sess.ID)
	log.Info("websocket connected")

	if err := conn.WriteJSON(wsMessage{Type: wsTypeSession, SessionID: sess.ID}); err != nil {
		return
	}

	ctx := r.Context()
	for {
		var in wsMessage
		if err := conn.ReadJSON(&in); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("websocket read ended", "error", err)
			}
			return
		}

		var out wsMessage
		switch in.Type {
		case wsTypePurge:
			sess.Purge(ctx)
			out = wsMessage{Type: wsTypePurge, SessionID: sess.ID}
		case wsTypeMessage, "":
			turn, err := sess.HandleTurn(ctx, in.Text)
			if err != nil {
				out = wsMessage{Type: wsTypeError, SessionID: sess.ID, Error: err.Error()}
				break
			}
			resp := toTurnResponse(sess.ID, turn)
			out = wsMessage{Type: wsTypeTurn, SessionID: sess.ID, Turn: &resp}
		default:
			out = wsMessage{Type: wsTypeError, SessionID: sess.ID, Error: "unknown message type " + in.Type}
		}

		if err := conn.WriteJSON(out); err != nil {
			log.Debug("websocket write failed", "error", err)
			return
		}
	}
}
