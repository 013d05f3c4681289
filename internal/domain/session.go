// Package domain contains core domain types for the intake service.
package domain

import (
	"time"
)

// Step is one ordered stage of the intake dialogue.
type Step string

const (
	StepGreeting     Step = "greeting"
	StepSituation    Step = "situation"
	StepDebtDetails  Step = "debt_details"
	StepCity         Step = "city"
	StepDocuments    Step = "documents"
	StepContacts     Step = "contacts"
	StepConfirmation Step = "confirmation"
	StepClose        Step = "close"
)

// Steps returns the fixed ordered step sequence of the dialogue.
func Steps() []Step {
	return []Step{
		StepGreeting,
		StepSituation,
		StepDebtDetails,
		StepCity,
		StepDocuments,
		StepContacts,
		StepConfirmation,
		StepClose,
	}
}

// DataSteps returns the steps whose answers become collected case fields.
func DataSteps() []Step {
	return Steps()[:6]
}

// Next returns the step following s in the fixed sequence.
// The last step returns itself.
func (s Step) Next() Step {
	steps := Steps()
	for i, step := range steps {
		if step == s && i+1 < len(steps) {
			return steps[i+1]
		}
	}
	return StepClose
}

// Index returns the position of s in the fixed sequence, or -1 if unknown.
func (s Step) Index() int {
	for i, step := range Steps() {
		if step == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a member of the fixed step sequence.
func (s Step) Valid() bool {
	return s.Index() >= 0
}

// Status represents the lifecycle state of an intake session.
type Status string

const (
	StatusActive           Status = "active"
	StatusConfirmed        Status = "confirmed"
	StatusClosedIncomplete Status = "closed_incomplete"
)

// Session holds dialogue state for one conversation identity.
type Session struct {
	ConversationID string
	CurrentStep    Step
	Answers        map[Step]string
	AttemptCounts  map[Step]int
	Status         Status
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSession creates an active session positioned at the greeting step.
func NewSession(conversationID string, now time.Time) *Session {
	return &Session{
		ConversationID: conversationID,
		CurrentStep:    StepGreeting,
		Answers:        make(map[Step]string),
		AttemptCounts:  make(map[Step]int),
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Terminal reports whether the session has reached a terminal state.
func (s *Session) Terminal() bool {
	return s.Status != StatusActive
}

// Answer returns the recorded answer for a step, if any.
func (s *Session) Answer(step Step) (string, bool) {
	v, ok := s.Answers[step]
	return v, ok
}

// SetAnswer records an answer for a step.
func (s *Session) SetAnswer(step Step, value string) {
	if s.Answers == nil {
		s.Answers = make(map[Step]string)
	}
	s.Answers[step] = value
}

// Attempts returns the retry count recorded for a step.
func (s *Session) Attempts(step Step) int {
	return s.AttemptCounts[step]
}

// SetAttempts records the retry count for a step.
func (s *Session) SetAttempts(step Step, n int) {
	if s.AttemptCounts == nil {
		s.AttemptCounts = make(map[Step]int)
	}
	s.AttemptCounts[step] = n
}

// ClearFrom removes answers and retry counts for step and every later step,
// and moves the dialogue back to step. Used for confirmation-declined
// rollback.
func (s *Session) ClearFrom(step Step) {
	idx := step.Index()
	if idx < 0 {
		return
	}
	for _, st := range Steps() {
		if st.Index() >= idx {
			delete(s.Answers, st)
			delete(s.AttemptCounts, st)
		}
	}
	s.CurrentStep = step
}

// CollectedFields returns the answers of the data steps, omitting steps
// without an answer.
func (s *Session) CollectedFields() map[Step]string {
	fields := make(map[Step]string, len(s.Answers))
	for _, st := range DataSteps() {
		if v, ok := s.Answers[st]; ok {
			fields[st] = v
		}
	}
	return fields
}
