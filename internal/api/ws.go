package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/flow"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/identity"
)

// wsWriteTimeout bounds a single outbound frame write.
const wsWriteTimeout = 10 * time.Second

// WebSocketHandler carries the intake dialogue over a WebSocket. One
// connection serves one conversation; frames are processed strictly in
// arrival order, which preserves the per-conversation event ordering the
// dialogue requires.
type WebSocketHandler struct {
	flow  *flow.Flow
	isDev bool
}

// NewWebSocketHandler creates a new WebSocket chat handler.
func NewWebSocketHandler(f *flow.Flow, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{flow: f, isDev: isDev}
}

// wsInbound is one dialogue message from the client.
type wsInbound struct {
	Message string `json:"message"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conversationID := identity.ConversationIDFromContext(r.Context())
	if conversationID == "" {
		conversationID = identity.NewConversationID()
	}
	slog.Info("WebSocket chat connected", "conversation_id", conversationID, "ip", r.RemoteAddr)

	opts := &websocket.AcceptOptions{}
	if h.isDev {
		// Local development runs the widget from another port.
		opts.OriginPatterns = []string{"*"}
	}
	ws, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "conversation_id", conversationID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "conversation ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "conversation_id", conversationID)
		}
	}()

	ctx := r.Context()
	for {
		msgType, data, err := ws.Read(ctx)
		if err != nil {
			slog.Debug("WebSocket read ended", "conversation_id", conversationID, "error", err)
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var inbound wsInbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			if writeErr := h.writeJSON(ctx, ws, map[string]string{"error": "invalid message"}); writeErr != nil {
				return
			}
			continue
		}

		result, err := h.flow.HandleMessage(ctx, conversationID, inbound.Message)
		if err != nil {
			slog.Error("WebSocket chat message processed with save failure",
				"conversation_id", conversationID, "error", err)
		}

		if err := h.writeJSON(ctx, ws, result); err != nil {
			slog.Debug("WebSocket write failed", "conversation_id", conversationID, "error", err)
			return
		}
	}
}

func (h *WebSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return ws.Write(writeCtx, websocket.MessageText, data)
}
