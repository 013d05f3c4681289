// Package intake implements the finite-state dialogue controller for the
// debt intake conversation.
package intake

import (
	"strings"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
)

// DefaultMaxAttempts is the per-step retry budget used when no explicit
// value is configured.
const DefaultMaxAttempts = 2

// DecisionKind discriminates the variants of a Decision.
type DecisionKind string

const (
	// DecisionPrompt asks the next question in the sequence.
	DecisionPrompt DecisionKind = "prompt"
	// DecisionRetry re-asks the current question after invalid input.
	DecisionRetry DecisionKind = "retry"
	// DecisionConfirm is the terminal outcome of an affirmed intake.
	DecisionConfirm DecisionKind = "confirm"
	// DecisionClose is the terminal outcome of an abandoned intake.
	DecisionClose DecisionKind = "close"
)

// CloseReason explains why an intake was closed without confirmation.
type CloseReason string

const (
	// CloseLimitReached means a step exhausted its retry budget.
	CloseLimitReached CloseReason = "limit_reached"
)

// Decision is the outcome of advancing the state machine by one inbound
// message. Kind selects the variant; the other fields are populated per
// variant.
type Decision struct {
	Kind      DecisionKind
	Step      domain.Step            // prompt/retry: the step being asked
	Reply     string                 // prompt/retry: text to send to the user
	Remaining int                    // retry: attempts left for the step
	Reason    CloseReason            // close only
	Answers   map[domain.Step]string // confirm/close: snapshot of collected fields
}

// Machine is the pure decision engine for the intake dialogue. It holds no
// I/O and no per-conversation state; Advance is deterministic in the
// session and input it is given, so callers may replay it freely.
type Machine struct {
	maxAttempts int
}

// New creates a machine with the given per-step retry budget.
func New(maxAttempts int) *Machine {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Machine{maxAttempts: maxAttempts}
}

// MaxAttempts returns the per-step retry budget.
func (m *Machine) MaxAttempts() int {
	return m.maxAttempts
}

// Advance processes one user message against an active session and returns
// the resulting decision. The session is mutated in place: answers, attempt
// counts and the current step are updated as a side effect of the decision.
// Callers must not invoke Advance on a terminal session.
func (m *Machine) Advance(sess *domain.Session, input string) Decision {
	input = strings.TrimSpace(input)

	if sess.CurrentStep == domain.StepConfirmation {
		return m.advanceConfirmation(sess, input)
	}
	return m.advanceDataStep(sess, input)
}

func (m *Machine) advanceDataStep(sess *domain.Session, input string) Decision {
	step := sess.CurrentStep

	if !validAnswer(step, input) {
		n := sess.Attempts(step) + 1
		if n > m.maxAttempts {
			return m.close(sess)
		}
		sess.SetAttempts(step, n)
		return Decision{
			Kind:      DecisionRetry,
			Step:      step,
			Reply:     retryPrompt(step, n),
			Remaining: m.maxAttempts - n,
		}
	}

	sess.SetAnswer(step, input)
	next := step.Next()
	sess.CurrentStep = next

	if next == domain.StepConfirmation {
		return Decision{
			Kind:  DecisionPrompt,
			Step:  next,
			Reply: confirmationPrompt(sess),
		}
	}
	return Decision{
		Kind:  DecisionPrompt,
		Step:  next,
		Reply: askPrompt(next),
	}
}

func (m *Machine) advanceConfirmation(sess *domain.Session, input string) Decision {
	if isAffirmative(input) {
		sess.CurrentStep = domain.StepClose
		return Decision{
			Kind:    DecisionConfirm,
			Answers: sess.CollectedFields(),
		}
	}

	if step, declined := declineTarget(input); declined {
		if input != "" {
			sess.Notes = input
		}
		sess.ClearFrom(step)
		if step == domain.StepGreeting {
			return Decision{
				Kind:  DecisionPrompt,
				Step:  step,
				Reply: restartPrompt,
			}
		}
		return Decision{
			Kind:  DecisionPrompt,
			Step:  step,
			Reply: askPrompt(step),
		}
	}

	// Neither an affirmation nor a recognizable decline. Re-ask within the
	// confirmation retry budget.
	n := sess.Attempts(domain.StepConfirmation) + 1
	if n > m.maxAttempts {
		return m.close(sess)
	}
	sess.SetAttempts(domain.StepConfirmation, n)
	return Decision{
		Kind:      DecisionRetry,
		Step:      domain.StepConfirmation,
		Reply:     retryPrompt(domain.StepConfirmation, n),
		Remaining: m.maxAttempts - n,
	}
}

func (m *Machine) close(sess *domain.Session) Decision {
	sess.CurrentStep = domain.StepClose
	return Decision{
		Kind:    DecisionClose,
		Reason:  CloseLimitReached,
		Answers: sess.CollectedFields(),
	}
}

// declineTarget interprets a non-affirmative confirmation response. It
// returns the earliest step the user appears to point at, or StepGreeting
// for a recognizable decline that names no step (full restart). The second
// return value is false when the response is not recognizable as a decline
// at all.
func declineTarget(input string) (domain.Step, bool) {
	lowered := strings.ToLower(input)

	target := domain.Step("")
	targetIdx := -1
	for step, markers := range rollbackMarkers {
		for _, marker := range markers {
			if strings.Contains(lowered, marker) {
				if idx := step.Index(); targetIdx == -1 || idx < targetIdx {
					target = step
					targetIdx = idx
				}
				break
			}
		}
	}
	if targetIdx >= 0 {
		return target, true
	}

	for _, marker := range declineMarkers {
		if containsWord(lowered, marker) {
			return domain.StepGreeting, true
		}
	}
	return "", false
}

func isAffirmative(input string) bool {
	normalized := strings.ToLower(strings.TrimRight(strings.TrimSpace(input), ".!"))
	for _, marker := range affirmativeMarkers {
		if normalized == marker {
			return true
		}
	}
	return false
}

func containsWord(haystack, word string) bool {
	for _, field := range strings.FieldsFunc(haystack, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ';' || r == '!' || r == '?'
	}) {
		if field == word {
			return true
		}
	}
	return false
}

var affirmativeMarkers = []string{
	"yes", "y", "ok", "okay", "confirm", "correct", "right", "да", "ага",
}

var declineMarkers = []string{
	"no", "n", "not", "wrong", "incorrect", "change", "edit", "fix", "redo", "нет",
}

// rollbackMarkers maps each re-askable step to the words a user is likely
// to use when pointing at it during a declined confirmation.
var rollbackMarkers = map[domain.Step][]string{
	domain.StepSituation:   {"situation", "description", "story"},
	domain.StepDebtDetails: {"debt", "loan"},
	domain.StepCity:        {"city", "region", "location"},
	domain.StepDocuments:   {"document", "papers"},
	domain.StepContacts:    {"contact", "phone", "name", "number"},
}
