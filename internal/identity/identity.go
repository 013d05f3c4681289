// Package identity provides anonymous per-conversation identity primitives.
// A browser chat widget gets a conversation ID via cookie; API and bot
// integrations may instead carry an explicit ID per request.
package identity

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// ConversationCookieName carries the cookie-issued conversation ID.
	ConversationCookieName = "intake_conversation_id"
	// ConversationHeaderName lets transports supply their own conversation ID.
	ConversationHeaderName = "X-Conversation-ID"

	conversationCookieMaxAge = 30 * 24 * time.Hour
)

type contextKey int

const conversationIDKey contextKey = iota

var conversationIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// ConversationIDFromContext extracts the conversation ID from the request
// context.
func ConversationIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(conversationIDKey).(string); ok {
		return v
	}
	return ""
}

// NewConversationID generates a fresh conversation identity.
func NewConversationID() string {
	return "conv-" + uuid.NewString()
}

// Sanitize validates an externally supplied conversation ID. Returns the
// trimmed ID, or empty string when it is unusable.
func Sanitize(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || !conversationIDPattern.MatchString(id) {
		return ""
	}
	return id
}

func conversationIDFromRequest(r *http.Request) string {
	if id := Sanitize(r.Header.Get(ConversationHeaderName)); id != "" {
		return id
	}
	if c, err := r.Cookie(ConversationCookieName); err == nil {
		return Sanitize(c.Value)
	}
	return ""
}

func setConversationCookie(w http.ResponseWriter, id string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     ConversationCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(conversationCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(conversationCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// Middleware resolves or issues the conversation identity for each request
// and injects it into the request context. The cookie is refreshed on every
// hit so an ongoing intake does not lose its identity mid-dialogue.
func Middleware(isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := conversationIDFromRequest(r)
			if id == "" {
				id = NewConversationID()
			}
			setConversationCookie(w, id, isDev)

			ctx := context.WithValue(r.Context(), conversationIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
