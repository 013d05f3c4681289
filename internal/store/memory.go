package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
)

// Memory implements Repository entirely in memory. It backs tests and
// ephemeral deployments where no durable storage is wanted, and doubles as
// the stub adapter behind the same save contract as the SQLite store.
type Memory struct {
	mu       sync.RWMutex
	cases    map[string]*domain.CaseRecord
	sessions map[string]*domain.Session
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		cases:    make(map[string]*domain.CaseRecord),
		sessions: make(map[string]*domain.Session),
	}
}

// SaveCase upserts a case record keyed by conversation ID.
func (m *Memory) SaveCase(_ context.Context, record *domain.CaseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases[record.ConversationID] = cloneCase(record)
	return nil
}

// GetCase retrieves a case record, or (nil, nil) when absent.
func (m *Memory) GetCase(_ context.Context, conversationID string) (*domain.CaseRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.cases[conversationID]
	if !ok {
		return nil, nil
	}
	return cloneCase(record), nil
}

// ListCases retrieves stored case records, newest first.
func (m *Memory) ListCases(_ context.Context, limit int) ([]*domain.CaseRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*domain.CaseRecord, 0, len(m.cases))
	for _, record := range m.cases {
		records = append(records, cloneCase(record))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// GetSession retrieves session state, or (nil, nil) when absent.
func (m *Memory) GetSession(_ context.Context, conversationID string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[conversationID]
	if !ok {
		return nil, nil
	}
	return cloneSession(session), nil
}

// UpsertSession stores a copy of the session state.
func (m *Memory) UpsertSession(_ context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := cloneSession(session)
	clone.UpdatedAt = time.Now()
	m.sessions[session.ConversationID] = clone
	return nil
}

// DeleteSession removes session state.
func (m *Memory) DeleteSession(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, conversationID)
	return nil
}

// CleanupIdleSessions removes active sessions idle for longer than ttl.
func (m *Memory) CleanupIdleSessions(_ context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, session := range m.sessions {
		if session.Status == domain.StatusActive && session.UpdatedAt.Before(threshold) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// CaseCount reports how many distinct cases have been stored. Test helper.
func (m *Memory) CaseCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cases)
}

// Ping always succeeds for the in-memory store.
func (m *Memory) Ping(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}

func cloneCase(record *domain.CaseRecord) *domain.CaseRecord {
	clone := *record
	clone.CollectedFields = make(map[domain.Step]string, len(record.CollectedFields))
	for k, v := range record.CollectedFields {
		clone.CollectedFields[k] = v
	}
	return &clone
}

func cloneSession(session *domain.Session) *domain.Session {
	clone := *session
	clone.Answers = make(map[domain.Step]string, len(session.Answers))
	for k, v := range session.Answers {
		clone.Answers[k] = v
	}
	clone.AttemptCounts = make(map[domain.Step]int, len(session.AttemptCounts))
	for k, v := range session.AttemptCounts {
		clone.AttemptCounts[k] = v
	}
	return &clone
}
