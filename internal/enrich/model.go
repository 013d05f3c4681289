package enrich

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
)

// Completer is the minimal completion surface the model-based enrichers
// need. Satisfied by OpenAIClient; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// defaultEnrichTimeout bounds a single model call when no explicit timeout
// is configured.
const defaultEnrichTimeout = 10 * time.Second

// ModelClassifier classifies via a completion model and falls back to the
// rule-based classifier on timeout, transport failure, or malformed output.
// Failures are logged and never propagated.
type ModelClassifier struct {
	completer Completer
	fallback  Classifier
	timeout   time.Duration
}

// NewModelClassifier wraps a completer with a rule-based fallback.
func NewModelClassifier(completer Completer, fallback Classifier, timeout time.Duration) *ModelClassifier {
	return &ModelClassifier{completer: completer, fallback: fallback, timeout: timeout}
}

// Classify implements Classifier.
func (c *ModelClassifier) Classify(ctx context.Context, answers map[domain.Step]string) domain.Classification {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout())
	defer cancel()

	out, err := c.completer.Complete(ctx, classificationSystem, buildClassificationPrompt(answers))
	if err != nil {
		slog.Warn("Model classification failed, using rule-based result", "error", err)
		return c.fallback.Classify(ctx, answers)
	}

	cls, ok := parseClassification(out)
	if !ok {
		slog.Warn("Model classification response was not valid JSON, using rule-based result", "response", out)
		return c.fallback.Classify(ctx, answers)
	}
	return cls
}

func (c *ModelClassifier) callTimeout() time.Duration {
	if c.timeout > 0 {
		return c.timeout
	}
	return defaultEnrichTimeout
}

func parseClassification(content string) (domain.Classification, bool) {
	content = strings.TrimSpace(content)
	var parsed struct {
		Type    string `json:"type"`
		Urgency string `json:"urgency"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return domain.Classification{}, false
	}
	if parsed.Type == "" {
		parsed.Type = domain.CaseTypeOther
	}
	if parsed.Urgency == "" {
		parsed.Urgency = domain.UrgencyNormal
	}
	return domain.Classification{Type: parsed.Type, Urgency: parsed.Urgency}, true
}

// ModelSummarizer summarizes via a completion model with the template-based
// summarizer as fallback. Same failure discipline as ModelClassifier.
type ModelSummarizer struct {
	completer Completer
	fallback  Summarizer
	timeout   time.Duration
}

// NewModelSummarizer wraps a completer with a template-based fallback.
func NewModelSummarizer(completer Completer, fallback Summarizer, timeout time.Duration) *ModelSummarizer {
	return &ModelSummarizer{completer: completer, fallback: fallback, timeout: timeout}
}

// Summarize implements Summarizer.
func (s *ModelSummarizer) Summarize(ctx context.Context, answers map[domain.Step]string, cls domain.Classification) string {
	timeout := s.timeout
	if timeout <= 0 {
		timeout = defaultEnrichTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := s.completer.Complete(ctx, summarySystem, buildSummaryPrompt(answers, cls))
	if err != nil {
		slog.Warn("Model summary failed, using template summary", "error", err)
		return s.fallback.Summarize(ctx, answers, cls)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		slog.Warn("Model summary was empty, using template summary")
		return s.fallback.Summarize(ctx, answers, cls)
	}
	return out
}
