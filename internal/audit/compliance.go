package audit

import (
	"context"
	"errors"
	"time"

	"github.com/staybook/audit-service/internal/models"
)

// ErrUnknownReportType is returned for report types other than GDPR/CCPA.
var ErrUnknownReportType = errors.New("audit: unknown compliance report type")

// DefaultReportPageSize bounds how many entries a report walk loads per query.
const DefaultReportPageSize = 500

// BookingStore is the external collaborator that owns the platform's booking
// records; the reporter only reads from it.
type BookingStore interface {
	ListBySubject(ctx context.Context, subjectID string) ([]models.Booking, error)
}

// Reporter assembles per-subject compliance exports for regulatory requests.
type Reporter struct {
	store    EntryStore
	bookings BookingStore
	recorder *Recorder
	pageSize int
}

// NewReporter wires the reporter. recorder may be nil to disable the
// meta-audit entry (used in tests).
func NewReporter(store EntryStore, bookings BookingStore, recorder *Recorder) *Reporter {
	return &Reporter{store: store, bookings: bookings, recorder: recorder, pageSize: DefaultReportPageSize}
}

// GenerateComplianceReport aggregates every audit entry where the subject is
// the actor plus the subject's booking records.
//
// Generating an export is itself access to personal data, so the reporter
// records one best-effort EXPORT entry about the run; the export succeeds
// regardless of that entry's fate.
func (r *Reporter) GenerateComplianceReport(ctx context.Context, subjectID string, reportType models.ReportType) (*models.ComplianceReport, error) {
	if reportType != models.ReportGDPR && reportType != models.ReportCCPA {
		return nil, ErrUnknownReportType
	}

	// The export must carry the subject's entire trail, so walk it in pages
	// instead of trusting the store's default query limit.
	var logs []models.AuditLogEntry
	for offset := 0; ; offset += r.pageSize {
		page, err := r.store.Query(ctx, Filter{Actor: subjectID, Limit: r.pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		logs = append(logs, page...)
		if len(page) < r.pageSize {
			break
		}
	}
	bookings, err := r.bookings.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	report := &models.ComplianceReport{
		ReportType:  reportType,
		GeneratedAt: time.Now().UTC(),
		SubjectID:   subjectID,
		Data: models.ComplianceReportData{
			AuditLogs: logs,
			Bookings:  bookings,
		},
	}

	if r.recorder != nil {
		flags := models.ComplianceFlags{GDPR: reportType == models.ReportGDPR, CCPA: reportType == models.ReportCCPA}
		r.recorder.Log(ctx, models.EventExport, "USER", subjectID,
			map[string]any{"report_type": reportType, "entries": len(logs), "bookings": len(bookings)},
			Options{Category: models.CategoryCompliance, Severity: models.SeverityInfo, Compliance: flags})
	}
	return report, nil
}
