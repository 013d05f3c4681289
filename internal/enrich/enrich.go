// Package enrich provides case classification and summary generation for
// finished intakes. Both capabilities come in a deterministic rule-based
// variant and a model-based variant; the model-based variants delegate to
// the rule-based ones whenever the model path fails, so neither capability
// can ever fail its caller.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
)

// Classifier labels collected answers with a debt type and urgency.
// Implementations are total: they produce a result for every answers
// mapping, including an empty one, and never return an error.
type Classifier interface {
	Classify(ctx context.Context, answers map[domain.Step]string) domain.Classification
}

// Summarizer produces a short human-readable case summary from the
// collected answers and their classification. Implementations never return
// an empty string and never fail.
type Summarizer interface {
	Summarize(ctx context.Context, answers map[domain.Step]string, cls domain.Classification) string
}

// Mode selects which enrichment variant is active.
const (
	ModeRules = "rules"
	ModeModel = "model"
)

// New builds the classifier and summarizer pair for the given mode. Model
// mode requires an API key; without one the rule-based variants are used
// and a warning is logged. Selection happens once at startup.
func New(mode, apiKey, model string, timeout time.Duration) (Classifier, Summarizer) {
	rc := RuleClassifier{}
	rs := RuleSummarizer{}

	if mode != ModeModel {
		return rc, rs
	}
	if apiKey == "" {
		slog.Warn("Model enrichment requested but no API key configured, using rule-based enrichment")
		return rc, rs
	}

	client := NewOpenAIClient(apiKey, model)
	slog.Info("Model enrichment enabled", "model", model, "timeout", timeout)
	return NewModelClassifier(client, rc, timeout), NewModelSummarizer(client, rs, timeout)
}
