package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/openaudit/govquery/internal/core/domain"
)

// queryRequest is the body of POST /api/v1/query.
type queryRequest struct {
	Query   string            `json:"query"`
	Method  string            `json:"method,omitempty"`
	Context map[string]string `json:"context,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("malformed body: %w", domain.ErrInvalidInput))
		return
	}

	q := domain.Query{Text: req.Query, Context: req.Context}
	if req.Method != "" {
		method := domain.QueryMethod(strings.ToUpper(req.Method))
		if !method.Valid() {
			writeError(w, fmt.Errorf("unknown method %q: %w", req.Method, domain.ErrInvalidInput))
			return
		}
		q.MethodPreference = method
	}

	resp, err := s.services.Query.Submit(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// chatRequest is the body of POST /api/v1/chat.
type chatRequest struct {
	SessionID string            `json:"session_id,omitempty"`
	Query     string            `json:"query"`
	Context   map[string]string `json:"context,omitempty"`
}

// chatResponse pairs the persisted reply with the full response.
type chatResponse struct {
	SessionID string              `json:"session_id"`
	Reply     *domain.ChatMessage `json:"reply"`
	Response  *domain.Response    `json:"response"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("malformed body: %w", domain.ErrInvalidInput))
		return
	}

	reply, resp, err := s.services.Chat.Ask(r.Context(), req.SessionID, req.Query, req.Context)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: reply.SessionID,
		Reply:     reply,
		Response:  resp,
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
		return
	}

	sessions, err := s.services.Chat.Sessions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// handleSessionHistory serves GET /api/v1/sessions/{id}.
func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, fmt.Errorf("bad session path: %w", domain.ErrInvalidInput))
		return
	}

	messages, err := s.services.Chat.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "messages": messages})
}

func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, fmt.Errorf("bad limit %q: %w", raw, domain.ErrInvalidInput))
			return
		}
		limit = n
	}

	entries, err := s.services.Audit.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleTrustMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
		return
	}

	metrics, err := s.services.Audit.Metrics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
