package enrich

import (
	"fmt"
	"strings"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
)

const classificationSystem = "You classify short debt intake descriptions into JSON labels only."

const classificationTemplate = `You are a legal intake assistant who classifies debt or potential personal bankruptcy cases.
Read the user description and respond with a compact JSON object using the following shape:
{
  "type": "consumer_loan | credit_card | mortgage | microloan | other",
  "urgency": "normal | high"
}
Keep the response strictly as JSON without extra text.
If information is missing, choose the closest option.

User description:
"%s"`

const summarySystem = "You generate concise summaries for debt intake without legal advice."

const summaryTemplate = `You are drafting a short, respectful summary of a debt or potential bankruptcy intake.
Use a concise tone (2-4 sentences). Do not provide legal advice. Include:
- short restatement of the situation;
- key debt details;
- city/region;
- documents mentioned;
- contact method provided.

Return only the summary text without bullet points.

Context:
%s`

func buildClassificationPrompt(answers map[domain.Step]string) string {
	description := strings.TrimSpace(
		answers[domain.StepSituation] + " " + answers[domain.StepDebtDetails],
	)
	if description == "" {
		description = answers[domain.StepGreeting]
	}
	return fmt.Sprintf(classificationTemplate, description)
}

func buildSummaryPrompt(answers map[domain.Step]string, cls domain.Classification) string {
	var parts []string
	for _, step := range domain.DataSteps() {
		if v, ok := answers[step]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", step, v))
		}
	}
	parts = append(parts, fmt.Sprintf("Classification: type=%s, urgency=%s", cls.Type, cls.Urgency))
	return fmt.Sprintf(summaryTemplate, strings.Join(parts, "\n"))
}
