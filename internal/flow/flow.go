// Package flow orchestrates the intake dialogue: it owns per-conversation
// session state, drives the state machine, triggers enrichment and
// persistence on terminal transitions, and produces the outbound reply.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/crm"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/enrich"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/intake"
	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/store"
)

const (
	confirmedReply = "Thank you. I have forwarded the details to a lawyer. " +
		"They will reach out to you soon."
	limitReachedReply = "We have reached the limit of questions for now. " +
		"I will pass along what we collected, and a lawyer may follow up to clarify details."
	alreadyClosedReply = "This inquiry is already closed. " +
		"If something new came up, please start a new conversation."
)

// Result is the outcome of processing one inbound message.
type Result struct {
	ConversationID string        `json:"conversation_id"`
	Reply          string        `json:"reply"`
	Step           domain.Step   `json:"step"`
	Status         domain.Status `json:"status"`
	Saved          bool          `json:"saved"`
}

// conversation serializes processing per conversation identity and caches
// the session between messages.
type conversation struct {
	mu   sync.Mutex
	sess *domain.Session
}

// Flow coordinates the state machine with enrichment and persistence.
// Different conversations are processed independently; messages within one
// conversation are handled one at a time.
type Flow struct {
	machine    *intake.Machine
	classifier enrich.Classifier
	summarizer enrich.Summarizer
	repo       store.Repository
	exporter   crm.Exporter // optional

	mu            sync.Mutex
	conversations map[string]*conversation
}

// New creates an intake flow. exporter may be nil when no CRM export is
// configured.
func New(machine *intake.Machine, classifier enrich.Classifier, summarizer enrich.Summarizer, repo store.Repository, exporter crm.Exporter) *Flow {
	return &Flow{
		machine:       machine,
		classifier:    classifier,
		summarizer:    summarizer,
		repo:          repo,
		exporter:      exporter,
		conversations: make(map[string]*conversation),
	}
}

// HandleMessage processes one inbound message for a conversation and
// returns the reply to send back. A non-nil error means the case record
// could not be persisted; the Result still carries a user-facing reply and
// must be delivered.
func (f *Flow) HandleMessage(ctx context.Context, conversationID, text string) (Result, error) {
	conv := f.conversation(conversationID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	sess, err := f.loadSession(ctx, conv, conversationID)
	if err != nil {
		// Session storage being unreachable is not something the user can
		// act on; proceed with a fresh in-memory session and log it.
		slog.Error("Failed to load session, starting fresh", "conversation_id", conversationID, "error", err)
		sess = domain.NewSession(conversationID, time.Now())
		conv.sess = sess
	}

	if sess.Terminal() {
		return Result{
			ConversationID: conversationID,
			Reply:          alreadyClosedReply,
			Step:           sess.CurrentStep,
			Status:         sess.Status,
		}, nil
	}

	decision := f.machine.Advance(sess, text)
	sess.UpdatedAt = time.Now()

	switch decision.Kind {
	case intake.DecisionConfirm:
		return f.finalize(ctx, sess, decision, domain.StatusConfirmed, confirmedReply)
	case intake.DecisionClose:
		return f.finalize(ctx, sess, decision, domain.StatusClosedIncomplete, limitReachedReply)
	default:
		if err := f.repo.UpsertSession(ctx, sess); err != nil {
			slog.Warn("Failed to persist session state", "conversation_id", conversationID, "error", err)
		}
		return Result{
			ConversationID: conversationID,
			Reply:          decision.Reply,
			Step:           sess.CurrentStep,
			Status:         sess.Status,
		}, nil
	}
}

// finalize runs the terminal path exactly once: enrichment, record build,
// persistence, optional CRM export. The closing reply is returned even when
// persistence fails; the failure is surfaced as the error so the caller can
// flag the record as not guaranteed saved.
func (f *Flow) finalize(ctx context.Context, sess *domain.Session, decision intake.Decision, status domain.Status, reply string) (Result, error) {
	cls := f.classifier.Classify(ctx, decision.Answers)
	summary := f.summarizer.Summarize(ctx, decision.Answers, cls)

	record := &domain.CaseRecord{
		ConversationID:  sess.ConversationID,
		ClientName:      domain.ExtractClientName(decision.Answers[domain.StepContacts]),
		CollectedFields: decision.Answers,
		Classification:  cls,
		Summary:         summary,
		Status:          status,
		Notes:           sess.Notes,
		CreatedAt:       time.Now(),
	}

	sess.Status = status

	saveErr := f.repo.SaveCase(ctx, record)
	if saveErr != nil {
		slog.Error("Case record not guaranteed saved",
			"conversation_id", sess.ConversationID, "status", status, "error", saveErr)
	} else {
		slog.Info("Case record saved",
			"conversation_id", sess.ConversationID,
			"status", status,
			"debt_type", cls.Type,
			"urgency", cls.Urgency)
		if f.exporter != nil {
			if err := f.exporter.AppendCase(ctx, record); err != nil {
				slog.Warn("CRM export failed", "conversation_id", sess.ConversationID, "error", err)
			}
		}
	}

	// Keep the terminal session around so replayed events short-circuit.
	if err := f.repo.UpsertSession(ctx, sess); err != nil {
		slog.Warn("Failed to persist terminal session state", "conversation_id", sess.ConversationID, "error", err)
	}

	result := Result{
		ConversationID: sess.ConversationID,
		Reply:          reply,
		Step:           sess.CurrentStep,
		Status:         status,
		Saved:          saveErr == nil,
	}
	if saveErr != nil {
		return result, fmt.Errorf("persist case record: %w", saveErr)
	}
	return result, nil
}

func (f *Flow) conversation(conversationID string) *conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv, ok := f.conversations[conversationID]
	if !ok {
		conv = &conversation{}
		f.conversations[conversationID] = conv
	}
	return conv
}

// loadSession resolves the session for a conversation: cached, persisted,
// or newly created. Caller holds the conversation lock.
func (f *Flow) loadSession(ctx context.Context, conv *conversation, conversationID string) (*domain.Session, error) {
	if conv.sess != nil {
		return conv.sess, nil
	}

	sess, err := f.repo.GetSession(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		sess = domain.NewSession(conversationID, time.Now())
		slog.Info("New intake session started", "conversation_id", conversationID)
	}
	conv.sess = sess
	return sess, nil
}

// StartJanitor launches a background worker that prunes idle active
// sessions from memory and storage until ctx is cancelled.
func (f *Flow) StartJanitor(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.pruneIdle(ctx, ttl)
			}
		}
	}()
}

func (f *Flow) pruneIdle(ctx context.Context, ttl time.Duration) {
	removed, err := f.repo.CleanupIdleSessions(ctx, ttl)
	if err != nil {
		slog.Warn("Idle session cleanup failed", "error", err)
	} else if removed > 0 {
		slog.Info("Pruned idle sessions from storage", "count", removed)
	}

	threshold := time.Now().Add(-ttl)
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, conv := range f.conversations {
		if !conv.mu.TryLock() {
			continue // conversation is mid-message, not idle
		}
		stale := conv.sess != nil && conv.sess.UpdatedAt.Before(threshold)
		conv.mu.Unlock()
		if stale {
			delete(f.conversations, id)
		}
	}
}
