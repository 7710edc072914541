// Package server exposes chat sessions over HTTP and WebSocket.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yuin/goldmark"

	"github.com/richinex/galactic/model"
	"github.com/richinex/galactic/session"
	"github.com/richinex/galactic/tools"
)

// Server serves the chat API over a session manager.
type Server struct {
	sessions *session.Manager
	tools    *tools.Registry
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// New returns the API handler. A nil logger uses slog.Default.
func New(sessions *session.Manager, registry *tools.Registry, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = tools.NewRegistry()
	}
	s := &Server{
		sessions: sessions,
		tools:    registry,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /tools", s.handleTools)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /sessions/{id}/messages", s.handleSendMessage)
	mux.HandleFunc("DELETE /sessions/{id}/messages", s.handlePurge)
	mux.HandleFunc("GET /sessions/{id}/stats", s.handleStats)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return chainMiddlewares(mux, withCORS, s.withLogging)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	Personality string `json:"personality,omitempty"`
}

type sessionResponse struct {
	ID           string    `json:"id"`
	MemoryPolicy string    `json:"memory_policy"`
	Personality  string    `json:"personality"`
	CreatedAt    time.Time `json:"created_at"`
}

type messageResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	HTML      string    `json:"html,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type turnResponse struct {
	SessionID  string                  `json:"session_id"`
	Question   string                  `json:"question"`
	Answer     string                  `json:"answer"`
	HTML       string                  `json:"html"`
	Success    bool                    `json:"success"`
	Abort      string                  `json:"abort_reason,omitempty"`
	Steps      []model.ScratchpadEntry `json:"steps"`
	Iterations int                     `json:"iterations"`
	DurationMs int64                   `json:"duration_ms"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.tools.List()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	// the body is optional
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid JSON body")
		return
	}

	var personality session.Personality
	if req.Personality != "" {
		p, err := session.ParsePersonality(req.Personality)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		personality = p
	}

	sess, err := s.sessions.Create()
	if err != nil {
		s.internalError(w, err)
		return
	}
	if personality != "" {
		sess.SetPersonality(personality)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"session": toSessionResponse(sess)})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	msgs := sess.Messages()
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		mr := messageResponse{Role: string(m.Role), Content: m.Text, Timestamp: m.Timestamp}
		if m.Role == model.RoleAssistant {
			mr.HTML = renderHTML(m.Text)
		}
		out = append(out, mr)
	}
	writeJSON(w, http.StatusOK, getSessionResponse{Session: toSessionResponse(sess), Messages: out})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	turn, err := sess.HandleTurn(r.Context(), req.Text)
	if errors.Is(err, session.ErrEmptyInput) {
		badRequest(w, "text is required")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTurnResponse(sess.ID, turn))
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.Purge(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Stats())
}

// lookup resolves the {id} path value, writing a 404 when it is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, session.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	if err != nil {
		s.internalError(w, err)
		return nil, false
	}
	return sess, true
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *session.Session) sessionResponse {
	return sessionResponse{
		ID:           s.ID,
		MemoryPolicy: string(s.Memory().Policy()),
		Personality:  string(s.Personality()),
		CreatedAt:    s.CreatedAt,
	}
}

func toTurnResponse(id string, t session.Turn) turnResponse {
	resp := turnResponse{
		SessionID:  id,
		Question:   t.Question,
		Answer:     t.Answer,
		HTML:       renderHTML(t.Answer),
		Success:    t.Success(),
		Steps:      t.Result.Scratchpad,
		Iterations: t.Result.Metadata.Iterations,
		DurationMs: t.Duration.Milliseconds(),
	}
	if resp.Steps == nil {
		resp.Steps = []model.ScratchpadEntry{}
	}
	if !resp.Success {
		resp.Abort = t.Result.Abort.String()
	}
	return resp
}

// renderHTML converts a markdown answer to an HTML fragment. On failure
// the escaped plain text is returned.
func renderHTML(md string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "<p>" + strings.ReplaceAll(htmlEscape(md), "\n", "<br>") + "</p>"
	}
	return buf.String()
}

var htmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")

func htmlEscape(s string) string {
	return htmlReplacer.Replace(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
