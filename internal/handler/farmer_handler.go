package handler

import (
	"encoding/json"
	"net/http"

	"edhumeni-admin/internal/api"
	"edhumeni-admin/internal/audit"
	"edhumeni-admin/internal/domain"
	"edhumeni-admin/internal/session"

	"github.com/go-chi/chi/v5"
)

// FarmerHandler proxies farmer CRUD to the backend.
type FarmerHandler struct {
	client *api.Client
	ctrl   *session.Controller
	audit  audit.Recorder
}

func NewFarmerHandler(client *api.Client, ctrl *session.Controller, rec audit.Recorder) *FarmerHandler {
	return &FarmerHandler{client: client, ctrl: ctrl, audit: rec}
}

func (h *FarmerHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := api.FarmerFilter{
		Region:    r.URL.Query().Get("region"),
		OfficerID: r.URL.Query().Get("officer_id"),
	}

	farmers, err := h.client.ListFarmers(r.Context(), filter)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, farmers)
}

func (h *FarmerHandler) Get(w http.ResponseWriter, r *http.Request) {
	farmer, err := h.client.GetFarmer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, farmer)
}

func (h *FarmerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.FarmerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	farmer, err := h.client.CreateFarmer(r.Context(), input)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	h.audit.Record(r.Context(), "farmer.create", h.operator(), farmer.ID, farmer.Name)
	writeJSON(w, http.StatusCreated, farmer)
}

func (h *FarmerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.FarmerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	farmer, err := h.client.UpdateFarmer(r.Context(), id, input)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	h.audit.Record(r.Context(), "farmer.update", h.operator(), id, farmer.Name)
	writeJSON(w, http.StatusOK, farmer)
}

func (h *FarmerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.client.DeleteFarmer(r.Context(), id); err != nil {
		writeBackendError(w, err)
		return
	}

	h.audit.Record(r.Context(), "farmer.delete", h.operator(), id, "")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *FarmerHandler) operator() string {
	if u := h.ctrl.Snapshot().User; u != nil {
		return u.Username
	}
	return ""
}
