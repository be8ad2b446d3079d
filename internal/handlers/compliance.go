package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/staybook/audit-service/internal/audit"
	"github.com/staybook/audit-service/internal/models"
)

// ComplianceHandler serves per-subject regulatory exports.
type ComplianceHandler struct {
	Reporter *audit.Reporter
}

// GenerateReport assembles the subject's export. Path: subjectID; query:
// type=GDPR|CCPA (default GDPR). The response is intended for serialization
// to a downloadable file by the caller.
func (h *ComplianceHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	if subjectID == "" {
		JSONError(w, "subject id is required", http.StatusBadRequest)
		return
	}
	reportType := models.ReportType(strings.ToUpper(r.URL.Query().Get("type")))
	if reportType == "" {
		reportType = models.ReportGDPR
	}

	report, err := h.Reporter.GenerateComplianceReport(r.Context(), subjectID, reportType)
	if err != nil {
		if errors.Is(err, audit.ErrUnknownReportType) {
			JSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
