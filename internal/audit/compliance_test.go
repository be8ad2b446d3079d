package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/audit-service/internal/models"
)

type fakeBookingStore struct {
	bookings []models.Booking
	err      error
}

func (s *fakeBookingStore) ListBySubject(_ context.Context, subjectID string) ([]models.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Booking
	for _, b := range s.bookings {
		if b.GuestID == subjectID || b.HostID == subjectID {
			out = append(out, b)
		}
	}
	return out, nil
}

func TestGenerateComplianceReport(t *testing.T) {
	store := &memStore{}
	r := newTestRecorder(t, store, nil)
	ctx := context.Background()

	_, err := r.Log(ctx, models.EventLogin, "USER", "guest-1", nil, Options{Actor: "guest-1"})
	require.NoError(t, err)
	_, err = r.Log(ctx, models.EventUpdate, "BOOKING", "b1", nil, Options{Actor: "guest-1"})
	require.NoError(t, err)
	_, err = r.Log(ctx, models.EventUpdate, "BOOKING", "b2", nil, Options{Actor: "someone-else"})
	require.NoError(t, err)

	bookings := &fakeBookingStore{bookings: []models.Booking{
		{ID: "b1", GuestID: "guest-1", HostID: "host-9", Status: "CONFIRMED", Amount: 42000, Currency: "EUR"},
		{ID: "b2", GuestID: "guest-2", HostID: "host-9", Status: "CANCELLED"},
	}}

	report, err := NewReporter(store, bookings, r).GenerateComplianceReport(ctx, "guest-1", models.ReportGDPR)
	require.NoError(t, err)

	assert.Equal(t, models.ReportGDPR, report.ReportType)
	assert.Equal(t, "guest-1", report.SubjectID)
	assert.WithinDuration(t, time.Now().UTC(), report.GeneratedAt, time.Minute)

	require.Len(t, report.Data.AuditLogs, 2, "only the subject's own activity is exported")
	for _, e := range report.Data.AuditLogs {
		assert.Equal(t, "guest-1", e.Actor)
	}
	require.Len(t, report.Data.Bookings, 1)
	assert.Equal(t, "b1", report.Data.Bookings[0].ID)
}

func TestGenerateComplianceReport_RecordsExportEntry(t *testing.T) {
	store := &memStore{}
	r := newTestRecorder(t, store, nil)
	ctx := context.Background()

	_, err := r.Log(ctx, models.EventLogin, "USER", "guest-1", nil, Options{Actor: "guest-1"})
	require.NoError(t, err)

	_, err = NewReporter(store, &fakeBookingStore{}, r).GenerateComplianceReport(ctx, "guest-1", models.ReportCCPA)
	require.NoError(t, err)

	exports, err := store.Query(ctx, Filter{EventType: models.EventExport})
	require.NoError(t, err)
	require.Len(t, exports, 1, "the export itself must leave a trail")

	e := exports[0]
	assert.Equal(t, models.CategoryCompliance, e.Category)
	assert.Equal(t, "guest-1", e.ResourceID)
	assert.True(t, e.Compliance.CCPA)
	assert.False(t, e.Compliance.GDPR)
	assert.True(t, VerifyHash(&e), "the meta-audit entry joins the chain like any other")
}

func TestGenerateComplianceReport_PagesThroughLargeTrails(t *testing.T) {
	store := &memStore{}
	r := newTestRecorder(t, store, nil)
	ctx := context.Background()

	const entries = 8
	for i := 0; i < entries; i++ {
		_, err := r.Log(ctx, models.EventUpdate, "BOOKING", fmt.Sprintf("b%d", i), nil, Options{Actor: "guest-1"})
		require.NoError(t, err)
	}

	rep := NewReporter(store, &fakeBookingStore{}, nil)
	rep.pageSize = 3
	report, err := rep.GenerateComplianceReport(ctx, "guest-1", models.ReportGDPR)
	require.NoError(t, err)
	assert.Len(t, report.Data.AuditLogs, entries, "a trail longer than one page must be exported whole")
}

func TestGenerateComplianceReport_NilRecorder(t *testing.T) {
	store := &memStore{}

	report, err := NewReporter(store, &fakeBookingStore{}, nil).GenerateComplianceReport(context.Background(), "guest-1", models.ReportGDPR)
	require.NoError(t, err)
	assert.Empty(t, report.Data.AuditLogs)
	assert.Empty(t, store.entries, "no recorder, no meta-audit entry")
}

func TestGenerateComplianceReport_UnknownType(t *testing.T) {
	_, err := NewReporter(&memStore{}, &fakeBookingStore{}, nil).GenerateComplianceReport(context.Background(), "guest-1", "HIPAA")
	assert.ErrorIs(t, err, ErrUnknownReportType)
}

func TestGenerateComplianceReport_BookingStoreError(t *testing.T) {
	bookings := &fakeBookingStore{err: errors.New("bookings db down")}

	_, err := NewReporter(&memStore{}, bookings, nil).GenerateComplianceReport(context.Background(), "guest-1", models.ReportGDPR)
	assert.Error(t, err)
}
