package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
)

// typeMarkers maps keyword substrings to debt-type labels. Checked in
// order; the first match wins. Russian markers cover the original intake
// audience.
var typeMarkers = []struct {
	marker string
	label  string
}{
	{"mortgage", domain.CaseTypeMortgage},
	{"ипот", domain.CaseTypeMortgage},
	{"credit card", domain.CaseTypeCreditCard},
	{"card", domain.CaseTypeCreditCard},
	{"карт", domain.CaseTypeCreditCard},
	{"microloan", domain.CaseTypeMicroloan},
	{"микро", domain.CaseTypeMicroloan},
	{"payday", domain.CaseTypeMicroloan},
	{"consumer", domain.CaseTypeConsumerLoan},
	{"кредит", domain.CaseTypeConsumerLoan},
	{"loan", domain.CaseTypeConsumerLoan},
}

// urgencyMarkers flag situations that need a lawyer's attention quickly.
var urgencyMarkers = []string{
	"court", "lawsuit", "bailiff", "enforcement", "collector", "threat",
	"urgent", "tomorrow", "суд", "пристав", "коллект", "срочно",
}

// RuleClassifier is the deterministic keyword-based classifier.
type RuleClassifier struct{}

// Classify derives the debt type from the situation and debt answers and
// the urgency from every collected field. Sparse or empty answers yield
// the neutral default.
func (RuleClassifier) Classify(_ context.Context, answers map[domain.Step]string) domain.Classification {
	basis := strings.ToLower(strings.TrimSpace(
		answers[domain.StepSituation] + " " + answers[domain.StepDebtDetails] + " " + answers[domain.StepGreeting],
	))

	caseType := domain.CaseTypeOther
	for _, tm := range typeMarkers {
		if strings.Contains(basis, tm.marker) {
			caseType = tm.label
			break
		}
	}

	urgency := domain.UrgencyNormal
	for _, answer := range answers {
		lowered := strings.ToLower(answer)
		for _, marker := range urgencyMarkers {
			if strings.Contains(lowered, marker) {
				urgency = domain.UrgencyHigh
				break
			}
		}
		if urgency == domain.UrgencyHigh {
			break
		}
	}

	return domain.Classification{Type: caseType, Urgency: urgency}
}

// RuleSummarizer is the deterministic template-based summarizer.
type RuleSummarizer struct{}

// Summarize renders a field-by-field summary, omitting steps that were not
// answered. The classification sentence is always present, so the result
// is non-empty even for a fully empty intake.
func (RuleSummarizer) Summarize(_ context.Context, answers map[domain.Step]string, cls domain.Classification) string {
	var b strings.Builder

	if name := domain.ExtractClientName(answers[domain.StepContacts]); name != "" {
		fmt.Fprintf(&b, "Name provided: %s. ", name)
	}
	if v, ok := answers[domain.StepSituation]; ok {
		fmt.Fprintf(&b, "The person reported: %s. ", v)
	} else if v, ok := answers[domain.StepGreeting]; ok {
		fmt.Fprintf(&b, "Opening message: %s. ", v)
	}
	if v, ok := answers[domain.StepDebtDetails]; ok {
		fmt.Fprintf(&b, "Debt details: %s. ", v)
	}
	if v, ok := answers[domain.StepCity]; ok {
		fmt.Fprintf(&b, "City/region: %s. ", v)
	}
	if v, ok := answers[domain.StepDocuments]; ok {
		fmt.Fprintf(&b, "Documents: %s. ", v)
	}
	if v, ok := answers[domain.StepContacts]; ok {
		fmt.Fprintf(&b, "Contact: %s. ", v)
	}
	fmt.Fprintf(&b, "Debt type: %s. Urgency: %s.", cls.Type, cls.Urgency)

	return b.String()
}
