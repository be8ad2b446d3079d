package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/staybook/audit-service/internal/audit"
	"github.com/staybook/audit-service/internal/middleware"
	"github.com/staybook/audit-service/internal/models"
)

// EventHandler ingests audit events from remote producers. In-process
// callers use the Recorder directly; this is the same contract over HTTP.
type EventHandler struct {
	Recorder *audit.Recorder
}

//
// ==========================
// Generic event ingest
// ==========================
//

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input struct {
		EventType  string         `json:"event_type" validate:"required"`
		Resource   string         `json:"resource" validate:"required,min=1,max=100"`
		ResourceID string         `json:"resource_id" validate:"max=255"`
		Details    map[string]any `json:"details"`
		Severity   string         `json:"severity"`
		Category   string         `json:"category"`
		Actor      string         `json:"actor"`
		Reason     string         `json:"reason"`
		Metadata   map[string]any `json:"metadata"`
		GDPR       bool           `json:"gdpr"`
		CCPA       bool           `json:"ccpa"`
		PCI        bool           `json:"pci"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if input.Actor == "" {
		input.Actor = middleware.OperatorFromContext(r.Context())
	}

	entry, err := h.Recorder.Log(r.Context(),
		models.EventType(input.EventType), input.Resource, input.ResourceID, input.Details,
		audit.Options{
			Severity: models.Severity(input.Severity),
			Category: models.Category(input.Category),
			Actor:    input.Actor,
			Reason:   input.Reason,
			Metadata: input.Metadata,
			Compliance: models.ComplianceFlags{
				GDPR: input.GDPR, CCPA: input.CCPA, PCI: input.PCI,
			},
		})
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if entry == nil {
		// Swallowed infrastructure failure: the event was accepted but not
		// durably chained. The producer's operation must proceed either way.
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

//
// ==========================
// Deletion events
// ==========================
//

func (h *EventHandler) CreateDeletionEvent(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Resource   string         `json:"resource" validate:"required"`
		ResourceID string         `json:"resource_id" validate:"required"`
		Snapshot   map[string]any `json:"snapshot" validate:"required"`
		Reason     string         `json:"reason"`
		HardDelete bool           `json:"hard_delete"`
		Actor      string         `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.Recorder.LogDeletion(r.Context(), input.Resource, input.ResourceID,
		input.Snapshot, input.Reason, input.HardDelete, audit.Options{Actor: input.Actor})
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeEntry(w, entry)
}

//
// ==========================
// Financial events
// ==========================
//

func (h *EventHandler) CreateFinancialEvent(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TransactionType string         `json:"transaction_type" validate:"required,oneof=CHARGE REFUND PAYOUT"`
		EntityID        string         `json:"entity_id" validate:"required"`
		AmountCents     int64          `json:"amount_cents" validate:"required"`
		Currency        string         `json:"currency" validate:"required,len=3"`
		Details         map[string]any `json:"details"`
		Actor           string         `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.Recorder.LogFinancialEvent(r.Context(), input.TransactionType,
		input.EntityID, input.AmountCents, input.Currency, input.Details,
		audit.Options{Actor: input.Actor})
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeEntry(w, entry)
}

//
// ==========================
// Permission change events
// ==========================
//

func (h *EventHandler) CreatePermissionChangeEvent(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SubjectID string   `json:"subject_id" validate:"required"`
		Before    []string `json:"before"`
		After     []string `json:"after"`
		Actor     string   `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.Recorder.LogPermissionChange(r.Context(), input.SubjectID,
		input.Before, input.After, audit.Options{Actor: input.Actor})
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeEntry(w, entry)
}

func writeEntry(w http.ResponseWriter, entry *models.AuditLogEntry) {
	w.Header().Set("Content-Type", "application/json")
	if entry == nil {
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}
