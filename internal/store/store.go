// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
)

// Repository defines the interface for persisting case records and intake
// session state.
type Repository interface {
	// SaveCase persists a finished case record. Saving is idempotent per
	// conversation: a second save for the same conversation_id upserts,
	// never duplicates.
	SaveCase(ctx context.Context, record *domain.CaseRecord) error

	// GetCase retrieves a case record by conversation ID.
	// Returns (nil, nil) when no record exists.
	GetCase(ctx context.Context, conversationID string) (*domain.CaseRecord, error)

	// ListCases retrieves the most recent case records, newest first.
	ListCases(ctx context.Context, limit int) ([]*domain.CaseRecord, error)

	// GetSession retrieves intake session state for a conversation.
	// Returns (nil, nil) when no session exists.
	GetSession(ctx context.Context, conversationID string) (*domain.Session, error)

	// UpsertSession creates or updates intake session state.
	UpsertSession(ctx context.Context, session *domain.Session) error

	// DeleteSession removes intake session state.
	DeleteSession(ctx context.Context, conversationID string) error

	// CleanupIdleSessions removes active sessions idle for longer than ttl
	// and returns how many were removed. Terminal sessions are kept for
	// replay detection.
	CleanupIdleSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies storage connectivity.
	Ping(ctx context.Context) error

	// Close releases storage resources.
	Close() error
}
