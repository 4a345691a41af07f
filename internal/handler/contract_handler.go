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

// ContractHandler proxies contract CRUD to the backend.
type ContractHandler struct {
	client *api.Client
	ctrl   *session.Controller
	audit  audit.Recorder
}

func NewContractHandler(client *api.Client, ctrl *session.Controller, rec audit.Recorder) *ContractHandler {
	return &ContractHandler{client: client, ctrl: ctrl, audit: rec}
}

func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := api.ContractFilter{
		FarmerID: r.URL.Query().Get("farmer_id"),
		Status:   r.URL.Query().Get("status"),
		Season:   r.URL.Query().Get("season"),
	}

	contracts, err := h.client.ListContracts(r.Context(), filter)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contracts)
}

func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	contract, err := h.client.GetContract(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contract)
}

func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.ContractInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	contract, err := h.client.CreateContract(r.Context(), input)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	h.audit.Record(r.Context(), "contract.create", h.operator(), contract.ID, contract.Crop)
	writeJSON(w, http.StatusCreated, contract)
}

func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input domain.ContractInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	contract, err := h.client.UpdateContract(r.Context(), id, input)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	h.audit.Record(r.Context(), "contract.update", h.operator(), id, contract.Status)
	writeJSON(w, http.StatusOK, contract)
}

func (h *ContractHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.client.DeleteContract(r.Context(), id); err != nil {
		writeBackendError(w, err)
		return
	}

	h.audit.Record(r.Context(), "contract.delete", h.operator(), id, "")
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ContractHandler) operator() string {
	if u := h.ctrl.Snapshot().User; u != nil {
		return u.Username
	}
	return ""
}
