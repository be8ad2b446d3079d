package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/staybook/audit-service/internal/audit"
	"github.com/staybook/audit-service/internal/models"
)

func TestLogsHandler_ListLogs(t *testing.T) {
	store := &testEntryStore{}
	rec := newHandlerRecorder(t, store)
	for _, actor := range []string{"a@staybook.com", "b@staybook.com", "a@staybook.com"} {
		if _, err := rec.Log(context.Background(), models.EventUpdate, "LISTING", "l1", nil,
			audit.Options{Actor: actor}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
	h := &LogsHandler{Verifier: audit.NewVerifier(store, 0)}

	req := httptest.NewRequest("GET", "/v1/logs?actor=a@staybook.com", nil)
	rr := httptest.NewRecorder()
	h.ListLogs(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ListLogs status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Items []models.AuditLogEntry `json:"items"`
		Count int                    `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Count != 2 || len(out.Items) != 2 {
		t.Errorf("unexpected result: %+v", out)
	}
	for _, e := range out.Items {
		if e.Actor != "a@staybook.com" {
			t.Errorf("filter leaked entry for %s", e.Actor)
		}
	}
}

func TestLogsHandler_ListLogs_Empty(t *testing.T) {
	h := &LogsHandler{Verifier: audit.NewVerifier(&testEntryStore{}, 0)}

	req := httptest.NewRequest("GET", "/v1/logs", nil)
	rr := httptest.NewRecorder()
	h.ListLogs(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ListLogs status: got %d, want 200", rr.Code)
	}
	var out struct {
		Items []models.AuditLogEntry `json:"items"`
		Count int                    `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Count != 0 || out.Items == nil {
		t.Errorf("empty result must be an empty array, got %+v", out)
	}
}

func TestLogsHandler_ListLogs_UnknownEventType(t *testing.T) {
	h := &LogsHandler{Verifier: audit.NewVerifier(&testEntryStore{}, 0)}

	req := httptest.NewRequest("GET", "/v1/logs?event_type=SHRUG", nil)
	rr := httptest.NewRecorder()
	h.ListLogs(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("ListLogs status: got %d, want 400", rr.Code)
	}
}

func TestLogsHandler_ListLogs_BadTimeRange(t *testing.T) {
	h := &LogsHandler{Verifier: audit.NewVerifier(&testEntryStore{}, 0)}

	req := httptest.NewRequest("GET", "/v1/logs?from=yesterday", nil)
	rr := httptest.NewRecorder()
	h.ListLogs(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("ListLogs status: got %d, want 400", rr.Code)
	}
}
