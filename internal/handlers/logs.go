package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/staybook/audit-service/internal/audit"
	"github.com/staybook/audit-service/internal/models"
)

// LogsHandler serves audit log queries.
type LogsHandler struct {
	Verifier *audit.Verifier
}

// ListLogs returns entries matching the query filters, most recent first.
// Query: from, to (RFC3339), actor, resource, event_type, severity,
// limit (default 100, max 1000), offset.
func (h *LogsHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	f := audit.Filter{
		Actor:     r.URL.Query().Get("actor"),
		Resource:  r.URL.Query().Get("resource"),
		EventType: models.EventType(r.URL.Query().Get("event_type")),
		Severity:  models.Severity(r.URL.Query().Get("severity")),
		Limit:     100,
	}
	if f.EventType != "" && !f.EventType.Valid() {
		JSONError(w, "unknown event_type", http.StatusBadRequest)
		return
	}
	if f.Severity != "" && !f.Severity.Valid() {
		JSONError(w, "unknown severity", http.StatusBadRequest)
		return
	}

	var err error
	if f.From, f.To, err = parseTimeRange(r); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 1000 {
			f.Limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			f.Offset = val
		}
	}

	entries, err := h.Verifier.QueryLogs(r.Context(), f)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.AuditLogEntry{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"items": entries,
		"count": len(entries),
	})
}

// parseTimeRange reads optional from/to RFC3339 query params.
func parseTimeRange(r *http.Request) (from, to time.Time, err error) {
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			return from, to, err
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			return from, to, err
		}
	}
	return from, to, nil
}
