//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/enrich"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/flow"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/intake"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/store"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusNotFound, "case not found")

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["error"] != "case not found" {
		t.Errorf("Expected error message, got %v", got["error"])
	}
}

func newTestRouter(t *testing.T) (chi.Router, store.Repository) {
	t.Helper()
	repo := store.NewMemory()
	classifier, summarizer := enrich.New(enrich.ModeRules, "", "", 0)
	f := flow.New(intake.New(2), classifier, summarizer, repo, nil)

	r := chi.NewRouter()
	NewChatHandler(f, repo).RegisterRoutes(r)
	NewHealthHandler(repo).RegisterHealth(r)
	return r, repo
}

func postChat(t *testing.T, r chi.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleChatReturnsReply(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postChat(t, r, `{"conversation_id": "conv-api-1", "message": "hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var result flow.Result
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.ConversationID != "conv-api-1" {
		t.Errorf("conversation_id = %q, want conv-api-1", result.ConversationID)
	}
	if result.Reply == "" {
		t.Error("Expected a non-empty reply")
	}
	if result.Step != domain.StepSituation {
		t.Errorf("step = %v, want situation", result.Step)
	}
}

func TestHandleChatRejectsBadBody(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postChat(t, r, `not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestHandleChatRequiresIdentity(t *testing.T) {
	r, _ := newTestRouter(t)

	// No conversation_id in the body and no identity middleware installed.
	w := postChat(t, r, `{"message": "hello"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGetCaseNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cases/conv-missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestListCasesAfterCompletedIntake(t *testing.T) {
	r, _ := newTestRouter(t)

	messages := []string{
		"hello",
		"I have an overdue credit card loan",
		"Credit card and consumer loan",
		"Metropolis",
		"Court letter available",
		"Jordan Doe, +123456789",
		"yes",
	}
	for _, msg := range messages {
		body, _ := json.Marshal(map[string]string{
			"conversation_id": "conv-api-2",
			"message":         msg,
		})
		w := postChat(t, r, string(body))
		if w.Code != http.StatusOK {
			t.Fatalf("chat message %q: status %d", msg, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cases", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var listing struct {
		Cases []*domain.CaseRecord `json:"cases"`
		Count int                  `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&listing); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if listing.Count != 1 || len(listing.Cases) != 1 {
		t.Fatalf("Expected exactly one case, got count=%d len=%d", listing.Count, len(listing.Cases))
	}
	if listing.Cases[0].ConversationID != "conv-api-2" {
		t.Errorf("conversation_id = %q, want conv-api-2", listing.Cases[0].ConversationID)
	}
	if listing.Cases[0].Status != domain.StatusConfirmed {
		t.Errorf("status = %v, want confirmed", listing.Cases[0].Status)
	}
}

func TestListCasesRejectsBadLimit(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, limit := range []string{"0", "-5", "501", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/cases?limit="+limit, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected status 400, got %d", limit, w.Code)
		}
	}
}

func TestHealthReportsDatabaseOK(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var status struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if status.Status != "healthy" {
		t.Errorf("status = %q, want healthy", status.Status)
	}
	if status.Checks["database"] != "ok" {
		t.Errorf("database check = %q, want ok", status.Checks["database"])
	}
}
