// Package crm holds outbound integrations that hand finished cases to
// lawyer-facing tools.
package crm

import (
	"context"
	"log/slog"

	"github.com/workflowarsenynn/legal-assistant-automation-portfolio/internal/domain"
)

// Exporter pushes a finished case record to an external destination.
// Export failures must not affect the intake dialogue; callers log and move
// on.
type Exporter interface {
	AppendCase(ctx context.Context, record *domain.CaseRecord) error
}

// LogExporter is a stand-in for a spreadsheet/CRM integration. It records
// the export intent in the log and performs no external call. A production
// integration would authenticate and push the row to the destination here.
type LogExporter struct{}

// AppendCase implements Exporter.
func (LogExporter) AppendCase(_ context.Context, record *domain.CaseRecord) error {
	slog.Info("CRM export",
		"conversation_id", record.ConversationID,
		"client_name", record.ClientName,
		"debt_type", record.Classification.Type,
		"urgency", record.Classification.Urgency,
		"status", record.Status)
	return nil
}
