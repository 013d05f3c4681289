package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/flow"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/identity"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/store"
)

// ChatHandler exposes the intake dialogue and the operator case endpoints.
type ChatHandler struct {
	flow *flow.Flow
	repo store.Repository
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(f *flow.Flow, repo store.Repository) *ChatHandler {
	return &ChatHandler{flow: f, repo: repo}
}

// RegisterRoutes registers chat and case routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.HandleChat)
		r.Get("/cases", h.ListCases)
		r.Get("/cases/{conversationID}", h.GetCase)
	})
}

// chatRequest is one inbound dialogue message. conversation_id is optional;
// without it the cookie-issued identity is used.
type chatRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Message        string `json:"message"`
}

// HandleChat processes one dialogue message and returns the reply.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	conversationID := identity.Sanitize(req.ConversationID)
	if conversationID == "" {
		conversationID = identity.ConversationIDFromContext(r.Context())
	}
	if conversationID == "" {
		Error(w, http.StatusBadRequest, "missing conversation identity")
		return
	}

	result, err := h.flow.HandleMessage(r.Context(), conversationID, req.Message)
	if err != nil {
		// Persistence failed but the dialogue reply must still reach the
		// user; result.Saved carries the reconciliation signal.
		slog.Error("Chat message processed with save failure",
			"conversation_id", conversationID, "error", err)
	}

	JSON(w, http.StatusOK, result)
}

// ListCases returns the most recent case records for operator review.
func (h *ChatHandler) ListCases(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			Error(w, http.StatusBadRequest, "limit must be an integer between 1 and 500")
			return
		}
		limit = n
	}

	records, err := h.repo.ListCases(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list cases", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list cases")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"cases": records,
		"count": len(records),
	})
}

// GetCase returns one case record by conversation ID.
func (h *ChatHandler) GetCase(w http.ResponseWriter, r *http.Request) {
	conversationID := identity.Sanitize(strings.TrimSpace(chi.URLParam(r, "conversationID")))
	if conversationID == "" {
		Error(w, http.StatusBadRequest, "invalid conversation id")
		return
	}

	record, err := h.repo.GetCase(r.Context(), conversationID)
	if err != nil {
		slog.Error("Failed to load case", "conversation_id", conversationID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to load case")
		return
	}
	if record == nil {
		Error(w, http.StatusNotFound, "case not found")
		return
	}

	JSON(w, http.StatusOK, record)
}
