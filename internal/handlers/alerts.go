package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/staybook/audit-service/internal/models"
	"github.com/staybook/audit-service/internal/repo"
)

// AlertsHandler serves the operator notification feed.
type AlertsHandler struct {
	Repo *repo.NotificationRepo
}

// ListAlerts returns recent notifications. Query: limit (default 50, max 200), offset.
func (h *AlertsHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 200 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	items, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"items": items,
		"count": len(items),
	})
}
