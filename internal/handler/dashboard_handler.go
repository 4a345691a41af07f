package handler

import (
	"net/http"

	"edhumeni-admin/internal/api"
)

// DashboardHandler serves the chart aggregates.
type DashboardHandler struct {
	client *api.Client
}

func NewDashboardHandler(client *api.Client) *DashboardHandler {
	return &DashboardHandler{client: client}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.client.DashboardSummary(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
