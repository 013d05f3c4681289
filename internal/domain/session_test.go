package domain

import (
	"testing"
	"time"
)

func TestStepOrder(t *testing.T) {
	steps := Steps()
	if len(steps) != 8 {
		t.Fatalf("Steps() returned %d steps, want 8", len(steps))
	}
	if steps[0] != StepGreeting || steps[len(steps)-1] != StepClose {
		t.Errorf("sequence must run greeting..close, got %v..%v", steps[0], steps[len(steps)-1])
	}
	for i, step := range steps {
		if step.Index() != i {
			t.Errorf("%v.Index() = %d, want %d", step, step.Index(), i)
		}
		if !step.Valid() {
			t.Errorf("%v.Valid() = false", step)
		}
	}
	if Step("banana").Valid() {
		t.Error("unknown step reported valid")
	}
}

func TestStepNext(t *testing.T) {
	if got := StepGreeting.Next(); got != StepSituation {
		t.Errorf("greeting.Next() = %v, want situation", got)
	}
	if got := StepContacts.Next(); got != StepConfirmation {
		t.Errorf("contacts.Next() = %v, want confirmation", got)
	}
	if got := StepClose.Next(); got != StepClose {
		t.Errorf("close.Next() = %v, want close", got)
	}
}

func TestDataStepsExcludeConfirmationAndClose(t *testing.T) {
	for _, step := range DataSteps() {
		if step == StepConfirmation || step == StepClose {
			t.Errorf("%v listed as a data step", step)
		}
	}
	if len(DataSteps()) != 6 {
		t.Errorf("DataSteps() returned %d steps, want 6", len(DataSteps()))
	}
}

func TestClearFromDropsLaterState(t *testing.T) {
	sess := NewSession("conv-1", time.Now())
	sess.SetAnswer(StepGreeting, "hello")
	sess.SetAnswer(StepSituation, "overdue loan")
	sess.SetAnswer(StepCity, "Metropolis")
	sess.SetAnswer(StepContacts, "Jordan Doe, +123")
	sess.SetAttempts(StepCity, 1)
	sess.CurrentStep = StepConfirmation

	sess.ClearFrom(StepCity)

	if sess.CurrentStep != StepCity {
		t.Errorf("current step = %v, want city", sess.CurrentStep)
	}
	if _, ok := sess.Answer(StepCity); ok {
		t.Error("city answer survived rollback")
	}
	if _, ok := sess.Answer(StepContacts); ok {
		t.Error("contacts answer survived rollback")
	}
	if sess.Attempts(StepCity) != 0 {
		t.Error("city attempts survived rollback")
	}
	if v, ok := sess.Answer(StepSituation); !ok || v != "overdue loan" {
		t.Error("earlier answer lost during rollback")
	}
}

func TestCollectedFieldsOmitsMissingSteps(t *testing.T) {
	sess := NewSession("conv-2", time.Now())
	sess.SetAnswer(StepGreeting, "hi")
	sess.SetAnswer(StepCity, "Metropolis")

	fields := sess.CollectedFields()
	if len(fields) != 2 {
		t.Fatalf("collected %d fields, want 2", len(fields))
	}
	if fields[StepCity] != "Metropolis" {
		t.Errorf("city field = %q", fields[StepCity])
	}
	if _, ok := fields[StepSituation]; ok {
		t.Error("absent step present in collected fields")
	}
}

func TestTerminal(t *testing.T) {
	sess := NewSession("conv-3", time.Now())
	if sess.Terminal() {
		t.Error("fresh session reported terminal")
	}
	sess.Status = StatusConfirmed
	if !sess.Terminal() {
		t.Error("confirmed session not terminal")
	}
	sess.Status = StatusClosedIncomplete
	if !sess.Terminal() {
		t.Error("closed session not terminal")
	}
}

func TestExtractClientName(t *testing.T) {
	tests := []struct {
		contact string
		want    string
	}{
		{"Jordan Doe, +123456789", "Jordan Doe"},
		{"Alex Smith / @alex_s", "Alex Smith"},
		{"Maria Ivanova | maria@example.com", "Maria Ivanova"},
		{"Jordan Doe +123456789", "Jordan Doe"},
		{"@handle", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := ExtractClientName(tt.contact); got != tt.want {
			t.Errorf("ExtractClientName(%q) = %q, want %q", tt.contact, got, tt.want)
		}
	}
}
