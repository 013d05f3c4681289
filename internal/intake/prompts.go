package intake

import (
	"fmt"
	"strings"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
)

// askPrompts holds the question asked for each step, keyed by the step the
// user is expected to answer next.
var askPrompts = map[domain.Step]string{
	domain.StepSituation: "Hello! I am an intake assistant focused on debts and potential personal bankruptcy. " +
		"I do not provide legal advice. I will ask a few questions and pass the information to a lawyer. " +
		"Please briefly describe your situation with debts.",
	domain.StepDebtDetails: "Thanks for sharing. What kind of debts are involved (consumer loan, credit card, mortgage, microloan)?",
	domain.StepCity:        "Got it. Which city or region are you in?",
	domain.StepDocuments:   "Do you have any documents (agreements, court decisions, bank letters, receipts)?",
	domain.StepContacts:    "Please share your name and the best way to contact you (phone, Telegram handle, messenger).",
}

// retryPrompts holds clarifying re-ask variants per step. The variant is
// chosen by attempt number so a second failure never repeats the first
// prompt verbatim.
var retryPrompts = map[domain.Step][]string{
	domain.StepGreeting: {
		"Please send a short message to get started.",
		"A quick hello or a word about your debts is enough to begin.",
	},
	domain.StepSituation: {
		"Please describe your situation with debts in a few words (e.g., missed payments, calls from lenders).",
		"Even one or two sentences help: what kind of debt trouble brought you here?",
	},
	domain.StepDebtDetails: {
		"Which debts are we talking about? Any overdue payments or collector activity?",
		"For example: a credit card, a consumer loan, a mortgage, or microloans. Which applies to you?",
	},
	domain.StepCity: {
		"Please share your city or region.",
		"The lawyer needs to know your location; which city or region should I note?",
	},
	domain.StepDocuments: {
		"Let me know if you have any documents such as contracts, court letters, or receipts.",
		"A short 'yes' or 'no' about documents (agreements, court decisions, bank letters) works too.",
	},
	domain.StepContacts: {
		"I need a name and a contact method (phone, @handle, messenger) to pass to the lawyer.",
		"Please include at least a phone number or a Telegram @handle along with your name.",
	},
	domain.StepConfirmation: {
		"Please reply 'yes' to confirm, or tell me which part needs correcting (situation, debts, city, documents, contacts).",
		"I did not catch that. Reply 'yes' if the recap is correct, or name the field to fix.",
	},
}

const restartPrompt = "No problem, let's start over. Please send a short message to begin again."

func askPrompt(step domain.Step) string {
	if p, ok := askPrompts[step]; ok {
		return p
	}
	return retryPrompt(step, 1)
}

func retryPrompt(step domain.Step, attempt int) string {
	variants := retryPrompts[step]
	if len(variants) == 0 {
		return "Could you rephrase that, please?"
	}
	return variants[(attempt-1)%len(variants)]
}

// confirmationPrompt builds a recap of everything collected so far and asks
// the user to confirm or correct it.
func confirmationPrompt(sess *domain.Session) string {
	var b strings.Builder
	b.WriteString("Here is a short recap of your case:\n")
	for _, step := range domain.DataSteps() {
		answer, ok := sess.Answer(step)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", fieldLabel(step), answer)
	}
	b.WriteString("Please confirm if this is correct (yes/ok) or share corrections.")
	return b.String()
}

func fieldLabel(step domain.Step) string {
	switch step {
	case domain.StepGreeting:
		return "Opening message"
	case domain.StepSituation:
		return "Situation"
	case domain.StepDebtDetails:
		return "Debts"
	case domain.StepCity:
		return "City/region"
	case domain.StepDocuments:
		return "Documents"
	case domain.StepContacts:
		return "Contact"
	default:
		return string(step)
	}
}
