package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"edhumeni-admin/internal/api"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeBackendError relays a backend failure to the UI, preserving the
// backend's status and structured message when present.
func writeBackendError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.StatusCode, apiErr.Error())
		return
	}
	writeError(w, http.StatusBadGateway, err.Error())
}
