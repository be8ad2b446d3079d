package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/staybook/audit-service/internal/audit"
	"github.com/staybook/audit-service/internal/config"
	"github.com/staybook/audit-service/internal/models"
	"github.com/staybook/audit-service/internal/repo"
)

var testEntryColumns = []string{
	"id", "category", "event_type", "severity", "actor",
	"ip_address", "user_agent", "session_id", "request_id",
	"resource", "resource_id", "details", "metadata",
	"gdpr", "ccpa", "pci", "prev_hash", "hash", "created_at",
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:          "test-secret-for-integration",
		JWTExpireHours:     1,
		RateLimitPerMinute: 600,
	}
}

// newTestServer wires the full router over a sqlmock-backed database, the way
// main does it against Postgres.
func newTestServer(t *testing.T, mock sqlmock.Sqlmock, db *sql.DB) *httptest.Server {
	t.Helper()

	auditRepo := repo.NewAuditRepo(db)
	notificationRepo := repo.NewNotificationRepo(db)
	bookingRepo := repo.NewBookingRepo(db)
	operatorRepo := repo.NewOperatorRepo(db)

	// The recorder reads the chain tail once at startup.
	mock.ExpectQuery(`FROM audit_log ORDER BY seq DESC LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(testEntryColumns))

	recorder, err := audit.NewRecorder(context.Background(), auditRepo, nil, time.Second)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	t.Cleanup(recorder.Close)

	cfg := testConfig()
	verifier := audit.NewVerifier(auditRepo, 0)
	reporter := audit.NewReporter(auditRepo, bookingRepo, recorder)
	srv := httptest.NewServer(newRouter(cfg, recorder, verifier, reporter, notificationRepo, operatorRepo))
	t.Cleanup(srv.Close)
	return srv
}


// TestAPI_LoginThenListLogs is an integration test: it builds the full router
// with a sqlmock-backed DB, logs in to get a JWT, then calls GET /v1/logs with
// the token.
func TestAPI_LoginThenListLogs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	// The recorder's audit insert lands between the operator lookup and the
	// logs query; order across connections is not deterministic.
	mock.MatchExpectationsInOrder(false)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	mock.ExpectQuery(`SELECT id, email, password_hash, role FROM operators WHERE email = \$1`).
		WithArgs("auditor@staybook.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role"}).
			AddRow(1, "auditor@staybook.com", string(hash), models.RoleAuditor))

	// LOGIN entry appended after the successful credential check.
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created := time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM audit_log ORDER BY seq DESC LIMIT \$1`).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(testEntryColumns).
			AddRow("e1", "AUTHENTICATION", "LOGIN", "INFO", "auditor@staybook.com",
				"203.0.113.9", "go-test", "", "", "OPERATOR", "auditor@staybook.com",
				`{}`, `{}`, false, false, false, "", "h1", created))

	srv := newTestServer(t, mock, db)

	// 1) Login
	loginBody, _ := json.Marshal(map[string]string{
		"email":    "auditor@staybook.com",
		"password": "s3cret",
	})
	loginResp, err := http.Post(srv.URL+"/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d, want 200", loginResp.StatusCode)
	}
	var loginOut struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&loginOut); err != nil || loginOut.Token == "" {
		t.Fatalf("login response: %v", err)
	}

	// 2) GET /v1/logs with Bearer token
	req, _ := http.NewRequest("GET", srv.URL+"/v1/logs", nil)
	req.Header.Set("Authorization", "Bearer "+loginOut.Token)
	logsResp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("logs request: %v", err)
	}
	defer logsResp.Body.Close()
	if logsResp.StatusCode != http.StatusOK {
		t.Fatalf("GET /v1/logs status: got %d, want 200", logsResp.StatusCode)
	}
	var out struct {
		Items []models.AuditLogEntry `json:"items"`
		Count int                    `json:"count"`
	}
	if err := json.NewDecoder(logsResp.Body).Decode(&out); err != nil {
		t.Fatalf("decode logs: %v", err)
	}
	if out.Count != 1 || out.Items[0].EventType != models.EventLogin {
		t.Errorf("unexpected logs: %+v", out)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_UnauthenticatedIsRejected checks that the JWT group turns away
// requests without a token.
func TestAPI_UnauthenticatedIsRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := newTestServer(t, mock, db)

	resp, err := http.Get(srv.URL + "/v1/logs")
	if err != nil {
		t.Fatalf("logs request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /v1/logs status: got %d, want 401", resp.StatusCode)
	}
}

// TestAPI_AuditorCannotIngest checks the admin-only group: an auditor token
// must not be able to POST events.
func TestAPI_AuditorCannotIngest(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	mock.ExpectQuery(`SELECT id, email, password_hash, role FROM operators WHERE email = \$1`).
		WithArgs("auditor@staybook.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role"}).
			AddRow(1, "auditor@staybook.com", string(hash), models.RoleAuditor))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	srv := newTestServer(t, mock, db)

	loginBody, _ := json.Marshal(map[string]string{
		"email":    "auditor@staybook.com",
		"password": "s3cret",
	})
	loginResp, err := http.Post(srv.URL+"/v1/auth/login", "application/json", bytes.NewReader(loginBody))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer loginResp.Body.Close()
	var loginOut struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(loginResp.Body).Decode(&loginOut); err != nil {
		t.Fatalf("login response: %v", err)
	}

	eventBody, _ := json.Marshal(map[string]string{"event_type": "UPDATE", "resource": "LISTING"})
	req, _ := http.NewRequest("POST", srv.URL+"/v1/events", bytes.NewReader(eventBody))
	req.Header.Set("Authorization", "Bearer "+loginOut.Token)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("events request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("POST /v1/events status: got %d, want 403", resp.StatusCode)
	}
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	srv := newTestServer(t, mock, db)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status: got %d, want 200", resp.StatusCode)
	}
}
