package domain

import (
	"strings"
	"time"
)

// Classification labels a case by debt type and urgency.
type Classification struct {
	Type    string `json:"type"`
	Urgency string `json:"urgency"`
}

// Classification values produced by the rule-based classifier. A model-based
// classifier may emit other labels; these are the deterministic baseline.
const (
	CaseTypeConsumerLoan = "consumer_loan"
	CaseTypeCreditCard   = "credit_card"
	CaseTypeMortgage     = "mortgage"
	CaseTypeMicroloan    = "microloan"
	CaseTypeOther        = "other"

	UrgencyNormal = "normal"
	UrgencyHigh   = "high"
)

// CaseRecord is the persisted output artifact of a finished intake.
// Built once by the orchestrator on a terminal transition and handed to the
// store by value; never mutated afterward.
type CaseRecord struct {
	ConversationID  string          `json:"conversation_id"`
	ClientName      string          `json:"client_name,omitempty"`
	CollectedFields map[Step]string `json:"collected_fields"`
	Classification  Classification  `json:"classification"`
	Summary         string          `json:"summary"`
	Status          Status          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Field returns a collected field value, or empty string when absent.
func (r *CaseRecord) Field(step Step) string {
	return r.CollectedFields[step]
}

// ExtractClientName pulls a likely client name out of the free-text contacts
// answer: the part before the first separator, else the first two words.
func ExtractClientName(contact string) string {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return ""
	}
	for _, sep := range []string{",", "/", "|"} {
		if i := strings.Index(contact, sep); i >= 0 {
			return strings.TrimSpace(contact[:i])
		}
	}
	words := strings.Fields(contact)
	if len(words) >= 2 {
		return words[0] + " " + words[1]
	}
	return ""
}
