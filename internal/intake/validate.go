package intake

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
)

// minAnswerLength is the minimum rune count accepted per step. Steps absent
// from the map accept any non-empty input.
var minAnswerLength = map[domain.Step]int{
	domain.StepSituation:   5,
	domain.StepDebtDetails: 3,
	domain.StepCity:        2,
	domain.StepDocuments:   2,
	domain.StepContacts:    5,
}

// validAnswer checks an input against the expected shape of the step. The
// input is assumed to be already trimmed.
func validAnswer(step domain.Step, input string) bool {
	if input == "" {
		return false
	}
	if utf8.RuneCountInString(input) < minAnswerLength[step] {
		return false
	}

	switch step {
	case domain.StepCity:
		return containsLetter(input)
	case domain.StepContacts:
		// A usable contact needs at least a phone number or a handle.
		return strings.ContainsAny(input, "@0123456789")
	default:
		return true
	}
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
