package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/audit-service/internal/models"
)

type fakeNotificationStore struct {
	created []models.Notification
	err     error
}

func (s *fakeNotificationStore) Create(_ context.Context, n *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *n)
	return nil
}

type fakePublisher struct {
	published []models.Notification
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, n *models.Notification) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, *n)
	return nil
}

func criticalEntry() *models.AuditLogEntry {
	return &models.AuditLogEntry{
		ID:         "entry-1",
		Category:   models.CategoryDataModification,
		EventType:  models.EventDelete,
		Severity:   models.SeverityCritical,
		Actor:      "admin@staybook.com",
		Resource:   "HOST",
		ResourceID: "host-42",
	}
}

func TestDispatch_CreatesNotification(t *testing.T) {
	store := &fakeNotificationStore{}
	stream := &fakePublisher{}

	NewAlertDispatcher(store, stream).Dispatch(context.Background(), criticalEntry())

	require.Len(t, store.created, 1)
	n := store.created[0]
	assert.Equal(t, "AUDIT_ALERT", n.Type)
	assert.Equal(t, "high", n.Priority)
	assert.Equal(t, "entry-1", n.AuditEntryID)
	assert.Contains(t, n.Title, "DELETE")
	assert.Contains(t, n.Message, "HOST/host-42")
	assert.Equal(t, "admin@staybook.com", n.Metadata["actor"])

	require.Len(t, stream.published, 1, "stored alerts also fan out to the stream")
	assert.Equal(t, n.AuditEntryID, stream.published[0].AuditEntryID)
}

func TestDispatch_StoreFailureSwallowed(t *testing.T) {
	store := &fakeNotificationStore{err: errors.New("notifications table gone")}
	stream := &fakePublisher{}

	assert.NotPanics(t, func() {
		NewAlertDispatcher(store, stream).Dispatch(context.Background(), criticalEntry())
	})
	assert.Empty(t, stream.published, "nothing is streamed when the row was not stored")
}

func TestDispatch_StreamFailureSwallowed(t *testing.T) {
	store := &fakeNotificationStore{}
	stream := &fakePublisher{err: errors.New("redis away")}

	assert.NotPanics(t, func() {
		NewAlertDispatcher(store, stream).Dispatch(context.Background(), criticalEntry())
	})
	assert.Len(t, store.created, 1, "the notification row survives a stream failure")
}

func TestDispatch_NilStream(t *testing.T) {
	store := &fakeNotificationStore{}

	assert.NotPanics(t, func() {
		NewAlertDispatcher(store, nil).Dispatch(context.Background(), criticalEntry())
	})
	assert.Len(t, store.created, 1)
}
