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

func TestVerifyHandler_RunVerification(t *testing.T) {
	store := &testEntryStore{}
	rec := newHandlerRecorder(t, store)
	for i := 0; i < 3; i++ {
		if _, err := rec.Log(context.Background(), models.EventUpdate, "LISTING", "l1", nil, audit.Options{}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
	h := &VerifyHandler{Verifier: audit.NewVerifier(store, 0)}

	req := httptest.NewRequest("POST", "/v1/verify", nil)
	rr := httptest.NewRecorder()
	h.RunVerification(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("RunVerification status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var report models.VerificationReport
	if err := json.NewDecoder(rr.Body).Decode(&report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.TotalChecked != 3 || report.Valid != 3 || !report.Intact() {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestVerifyHandler_RunVerification_TamperIsStillOK(t *testing.T) {
	store := &testEntryStore{}
	rec := newHandlerRecorder(t, store)
	for i := 0; i < 3; i++ {
		if _, err := rec.Log(context.Background(), models.EventUpdate, "LISTING", "l1",
			map[string]any{"i": i}, audit.Options{}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}
	store.entries[1].Details["i"] = 99

	h := &VerifyHandler{Verifier: audit.NewVerifier(store, 0)}
	req := httptest.NewRequest("POST", "/v1/verify", nil)
	rr := httptest.NewRecorder()
	h.RunVerification(rr, req)

	// Tampering is a finding, not a server error.
	if rr.Code != http.StatusOK {
		t.Fatalf("RunVerification status: got %d, want 200", rr.Code)
	}
	var report models.VerificationReport
	if err := json.NewDecoder(rr.Body).Decode(&report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(report.Invalid) != 1 || report.Intact() {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestVerifyHandler_RunVerification_BadRange(t *testing.T) {
	h := &VerifyHandler{Verifier: audit.NewVerifier(&testEntryStore{}, 0)}

	req := httptest.NewRequest("POST", "/v1/verify?from=lastweek", nil)
	rr := httptest.NewRecorder()
	h.RunVerification(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("RunVerification status: got %d, want 400", rr.Code)
	}
}
