package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/staybook/audit-service/internal/models"
	"github.com/staybook/audit-service/internal/repo"
)

func TestAlertsHandler_ListAlerts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM notifications ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "title", "message", "priority", "audit_entry_id", "metadata", "created_at"}).
			AddRow(1, "AUDIT_ALERT", "Critical audit event: DELETE", "review", "high", "e1", `{}`, created))

	h := &AlertsHandler{Repo: repo.NewNotificationRepo(db)}
	req := httptest.NewRequest("GET", "/v1/alerts", nil)
	rr := httptest.NewRecorder()
	h.ListAlerts(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ListAlerts status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Items []models.Notification `json:"items"`
		Count int                   `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Count != 1 || out.Items[0].AuditEntryID != "e1" {
		t.Errorf("unexpected alerts: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAlertsHandler_ListAlerts_ClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM notifications ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "title", "message", "priority", "audit_entry_id", "metadata", "created_at"}))

	h := &AlertsHandler{Repo: repo.NewNotificationRepo(db)}
	req := httptest.NewRequest("GET", "/v1/alerts?limit=99999", nil)
	rr := httptest.NewRecorder()
	h.ListAlerts(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ListAlerts status: got %d, want 200", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
