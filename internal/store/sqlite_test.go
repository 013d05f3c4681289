package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "intake.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return repo
}

func sampleRecord(conversationID string) *domain.CaseRecord {
	return &domain.CaseRecord{
		ConversationID: conversationID,
		ClientName:     "Jordan Doe",
		CollectedFields: map[domain.Step]string{
			domain.StepSituation: "overdue credit card debt",
			domain.StepCity:      "Metropolis",
			domain.StepContacts:  "Jordan Doe, +123456789",
		},
		Classification: domain.Classification{
			Type:    domain.CaseTypeCreditCard,
			Urgency: domain.UrgencyHigh,
		},
		Summary:   "Jordan Doe reported overdue credit card debt in Metropolis.",
		Status:    domain.StatusConfirmed,
		CreatedAt: time.Now(),
	}
}

func TestSaveCaseRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.SaveCase(ctx, sampleRecord("conv-1")); err != nil {
		t.Fatalf("SaveCase: %v", err)
	}

	record, err := repo.GetCase(ctx, "conv-1")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if record == nil {
		t.Fatal("GetCase returned nil for saved record")
	}
	if record.ClientName != "Jordan Doe" {
		t.Errorf("client name = %q, want Jordan Doe", record.ClientName)
	}
	if record.Classification.Type != domain.CaseTypeCreditCard {
		t.Errorf("debt type = %q, want credit_card", record.Classification.Type)
	}
	if record.CollectedFields[domain.StepCity] != "Metropolis" {
		t.Errorf("city field = %q, want Metropolis", record.CollectedFields[domain.StepCity])
	}
	if record.Status != domain.StatusConfirmed {
		t.Errorf("status = %v, want confirmed", record.Status)
	}
}

func TestSaveCaseUpsertIsIdempotent(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	first := sampleRecord("conv-2")
	if err := repo.SaveCase(ctx, first); err != nil {
		t.Fatalf("first SaveCase: %v", err)
	}

	second := sampleRecord("conv-2")
	second.Summary = "updated summary"
	if err := repo.SaveCase(ctx, second); err != nil {
		t.Fatalf("second SaveCase: %v", err)
	}

	records, err := repo.ListCases(ctx, 10)
	if err != nil {
		t.Fatalf("ListCases: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("stored cases = %d, want 1 (upsert)", len(records))
	}
	if records[0].Summary != "updated summary" {
		t.Errorf("summary = %q, want the upserted value", records[0].Summary)
	}
}

func TestGetCaseMissingReturnsNil(t *testing.T) {
	repo := newTestStore(t)
	record, err := repo.GetCase(context.Background(), "conv-none")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if record != nil {
		t.Errorf("GetCase = %+v, want nil", record)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	sess := domain.NewSession("conv-3", time.Now())
	sess.CurrentStep = domain.StepCity
	sess.SetAnswer(domain.StepGreeting, "hello")
	sess.SetAnswer(domain.StepSituation, "missed loan payments")
	sess.SetAttempts(domain.StepDebtDetails, 1)

	if err := repo.UpsertSession(ctx, sess); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}

	got, err := repo.GetSession(ctx, "conv-3")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil {
		t.Fatal("GetSession returned nil for saved session")
	}
	if got.CurrentStep != domain.StepCity {
		t.Errorf("current step = %v, want city", got.CurrentStep)
	}
	if got.Status != domain.StatusActive {
		t.Errorf("status = %v, want active", got.Status)
	}
	if v, _ := got.Answer(domain.StepSituation); v != "missed loan payments" {
		t.Errorf("situation answer = %q", v)
	}
	if got.Attempts(domain.StepDebtDetails) != 1 {
		t.Errorf("debt_details attempts = %d, want 1", got.Attempts(domain.StepDebtDetails))
	}
}

func TestDeleteSession(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	sess := domain.NewSession("conv-4", time.Now())
	if err := repo.UpsertSession(ctx, sess); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}
	if err := repo.DeleteSession(ctx, "conv-4"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	got, err := repo.GetSession(ctx, "conv-4")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Errorf("session still present after delete: %+v", got)
	}
}

func TestCleanupIdleSessionsKeepsTerminalOnes(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	active := domain.NewSession("conv-active", time.Now())
	if err := repo.UpsertSession(ctx, active); err != nil {
		t.Fatalf("UpsertSession active: %v", err)
	}

	terminal := domain.NewSession("conv-done", time.Now())
	terminal.Status = domain.StatusConfirmed
	if err := repo.UpsertSession(ctx, terminal); err != nil {
		t.Fatalf("UpsertSession terminal: %v", err)
	}

	// Zero TTL makes everything idle immediately.
	time.Sleep(1100 * time.Millisecond) // updated_at has second resolution
	removed, err := repo.CleanupIdleSessions(ctx, 0)
	if err != nil {
		t.Fatalf("CleanupIdleSessions: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1 (active only)", removed)
	}

	if got, _ := repo.GetSession(ctx, "conv-done"); got == nil {
		t.Error("terminal session removed; replay detection needs it")
	}
	if got, _ := repo.GetSession(ctx, "conv-active"); got != nil {
		t.Error("idle active session survived cleanup")
	}
}
