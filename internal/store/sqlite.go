package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS cases (
		conversation_id TEXT PRIMARY KEY,
		client_name TEXT,
		fields_json TEXT NOT NULL,
		debt_type TEXT NOT NULL,
		urgency TEXT NOT NULL,
		case_summary TEXT NOT NULL,
		status TEXT NOT NULL,
		notes TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cases_created ON cases(created_at);

	CREATE TABLE IF NOT EXISTS sessions (
		conversation_id TEXT PRIMARY KEY,
		current_step TEXT NOT NULL,
		status TEXT NOT NULL,
		answers_json TEXT NOT NULL,
		attempts_json TEXT NOT NULL,
		notes TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveCase upserts a case record keyed by conversation ID. Retries once
// with backoff on SQLite concurrency errors so a closing acknowledgment is
// never sent for a write that silently failed.
func (s *SQLiteStore) SaveCase(ctx context.Context, record *domain.CaseRecord) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.saveCaseOnce(ctx, record)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || i == maxRetries-1 {
			break
		}
		delay := baseDelay * time.Duration(1<<i)
		slog.Debug("SaveCase hit a SQLite conflict, retrying",
			"conversation_id", record.ConversationID,
			"attempt", i+1,
			"delay", delay)
		time.Sleep(delay)
	}
	return fmt.Errorf("save case for %s: %w", record.ConversationID, err)
}

func (s *SQLiteStore) saveCaseOnce(ctx context.Context, record *domain.CaseRecord) error {
	fieldsJSON, err := json.Marshal(record.CollectedFields)
	if err != nil {
		return fmt.Errorf("marshal collected fields: %w", err)
	}

	query := `
	INSERT INTO cases (
		conversation_id, client_name, fields_json, debt_type, urgency,
		case_summary, status, notes, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(conversation_id) DO UPDATE SET
		client_name = excluded.client_name,
		fields_json = excluded.fields_json,
		debt_type = excluded.debt_type,
		urgency = excluded.urgency,
		case_summary = excluded.case_summary,
		status = excluded.status,
		notes = excluded.notes,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		record.ConversationID, record.ClientName, string(fieldsJSON),
		record.Classification.Type, record.Classification.Urgency,
		record.Summary, string(record.Status), record.Notes,
		record.CreatedAt.Unix(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert case: %w", err)
	}
	return nil
}

// GetCase retrieves a case record by conversation ID.
func (s *SQLiteStore) GetCase(ctx context.Context, conversationID string) (*domain.CaseRecord, error) {
	query := `
		SELECT conversation_id, client_name, fields_json, debt_type, urgency,
		       case_summary, status, notes, created_at
		FROM cases WHERE conversation_id = ?`

	record, err := scanCase(s.db.QueryRowContext(ctx, query, conversationID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan case row: %w", err)
	}
	return record, nil
}

// ListCases retrieves the most recent case records, newest first.
func (s *SQLiteStore) ListCases(ctx context.Context, limit int) ([]*domain.CaseRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT conversation_id, client_name, fields_json, debt_type, urgency,
		       case_summary, status, notes, created_at
		FROM cases ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close case rows", "error", closeErr)
		}
	}()

	var records []*domain.CaseRecord
	for rows.Next() {
		record, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*domain.CaseRecord, error) {
	var record domain.CaseRecord
	var clientName, notes sql.NullString
	var fieldsJSON, status string
	var createdAt int64

	err := row.Scan(
		&record.ConversationID, &clientName, &fieldsJSON,
		&record.Classification.Type, &record.Classification.Urgency,
		&record.Summary, &status, &notes, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	record.ClientName = clientName.String
	record.Notes = notes.String
	record.Status = domain.Status(status)
	record.CreatedAt = time.Unix(createdAt, 0)

	if err := json.Unmarshal([]byte(fieldsJSON), &record.CollectedFields); err != nil {
		return nil, fmt.Errorf("unmarshal collected fields: %w", err)
	}
	return &record, nil
}

// GetSession retrieves intake session state for a conversation.
func (s *SQLiteStore) GetSession(ctx context.Context, conversationID string) (*domain.Session, error) {
	query := `
		SELECT conversation_id, current_step, status, answers_json,
		       attempts_json, notes, created_at, updated_at
		FROM sessions WHERE conversation_id = ?`

	row := s.db.QueryRowContext(ctx, query, conversationID)

	var session domain.Session
	var step, status, answersJSON, attemptsJSON string
	var notes sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&session.ConversationID, &step, &status,
		&answersJSON, &attemptsJSON, &notes,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	session.CurrentStep = domain.Step(step)
	session.Status = domain.Status(status)
	session.Notes = notes.String
	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)

	if err := json.Unmarshal([]byte(answersJSON), &session.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal([]byte(attemptsJSON), &session.AttemptCounts); err != nil {
		return nil, fmt.Errorf("unmarshal attempt counts: %w", err)
	}
	if session.Answers == nil {
		session.Answers = make(map[domain.Step]string)
	}
	if session.AttemptCounts == nil {
		session.AttemptCounts = make(map[domain.Step]int)
	}

	return &session, nil
}

// UpsertSession creates or updates intake session state.
func (s *SQLiteStore) UpsertSession(ctx context.Context, session *domain.Session) error {
	answersJSON, err := json.Marshal(session.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	attemptsJSON, err := json.Marshal(session.AttemptCounts)
	if err != nil {
		return fmt.Errorf("marshal attempt counts: %w", err)
	}

	query := `
		INSERT INTO sessions (
			conversation_id, current_step, status, answers_json,
			attempts_json, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET
			current_step = excluded.current_step,
			status = excluded.status,
			answers_json = excluded.answers_json,
			attempts_json = excluded.attempts_json,
			notes = excluded.notes,
			updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		session.ConversationID, string(session.CurrentStep), string(session.Status),
		string(answersJSON), string(attemptsJSON), session.Notes,
		session.CreatedAt.Unix(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// DeleteSession removes intake session state.
func (s *SQLiteStore) DeleteSession(ctx context.Context, conversationID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE conversation_id = ?`, conversationID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CleanupIdleSessions removes active sessions idle for longer than ttl.
func (s *SQLiteStore) CleanupIdleSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	query := `DELETE FROM sessions WHERE status = ? AND updated_at < ?`
	result, err := s.db.ExecContext(ctx, query, string(domain.StatusActive), threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup idle sessions: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
