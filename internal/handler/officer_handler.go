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

// OfficerHandler proxies Agricultural Extension Officer CRUD to the backend.
type OfficerHandler struct {
	client *api.Client
	ctrl   *session.Controller
	audit  audit.Recorder
}

func NewOfficerHandler(client *api.Client, ctrl *session.Controller, rec audit.Recorder) *OfficerHandler {
	return &OfficerHandler{client: client, ctrl: ctrl, audit: rec}
}

func (h *OfficerHandler) List(w http.ResponseWriter, r *http.Request) {
	officers, err := h.client.ListOfficers(r.Context(), r.URL.Query().Get("region"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, officers)
}

func (h *OfficerHandler) Get(w http.ResponseWriter, r *http.Request) {
	officer, err := h.client.GetOfficer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, officer)
}

func (h *OfficerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.OfficerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	officer, err := h.client.CreateOfficer(r.Context(), input)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	h.audit.Record(r.Context(), "officer.create", h.operator(), officer.ID, officer.Name)
	writeJSON(w, http.StatusCreated, officer)
}

func (h *OfficerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.OfficerInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	officer, err := h.client.UpdateOfficer(r.Context(), id, input)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	h.audit.Record(r.Context(), "officer.update", h.operator(), id, officer.Name)
	writeJSON(w, http.StatusOK, officer)
}

func (h *OfficerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.client.DeleteOfficer(r.Context(), id); err != nil {
		writeBackendError(w, err)
		return
	}

	h.audit.Record(r.Context(), "officer.delete", h.operator(), id, "")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *OfficerHandler) operator() string {
	if u := h.ctrl.Snapshot().User; u != nil {
		return u.Username
	}
	return ""
}
