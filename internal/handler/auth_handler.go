package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"edhumeni-admin/internal/audit"
	"edhumeni-admin/internal/domain"
	"edhumeni-admin/internal/security"
	"edhumeni-admin/internal/session"
)

// AuthHandler exposes the operator session over the terminal API.
type AuthHandler struct {
	ctrl  *session.Controller
	audit audit.Recorder
	csrf  *security.TokenManager
}

func NewAuthHandler(ctrl *session.Controller, rec audit.Recorder, csrf *security.TokenManager) *AuthHandler {
	return &AuthHandler{ctrl: ctrl, audit: rec, csrf: csrf}
}

// LoginRequest is the login form payload.
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// SessionResponse mirrors the controller snapshot for the UI. CSRFToken
// is how a reloaded page recovers the token for write requests.
type SessionResponse struct {
	LoggedIn    bool         `json:"logged_in"`
	Loading     bool         `json:"loading"`
	AuthChecked bool         `json:"auth_checked"`
	Error       string       `json:"error,omitempty"`
	User        *domain.User `json:"user,omitempty"`
	CSRFToken   string       `json:"csrf_token,omitempty"`
}

// Login authenticates the operator against the backend.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	user, err := h.ctrl.Login(r.Context(), req.Username, req.Password, req.RememberMe)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, session.ErrOperationInFlight) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	token, err := h.csrf.Issue()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}
	w.Header().Set("X-CSRF-Token", token)

	h.audit.Record(r.Context(), "auth.login", user.Username, user.ID, "")

	writeJSON(w, http.StatusOK, user)
}

// Logout clears the operator session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	operator := ""
	if u := h.ctrl.Snapshot().User; u != nil {
		operator = u.Username
	}

	if err := h.ctrl.Logout(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to logout")
		return
	}
	h.csrf.Clear()

	h.audit.Record(r.Context(), "auth.logout", operator, "", "")

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me returns the current session state.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	snap := h.ctrl.Snapshot()
	resp := SessionResponse{
		LoggedIn:    snap.LoggedIn,
		Loading:     snap.Loading,
		AuthChecked: snap.AuthChecked,
		Error:       snap.Error,
		User:        snap.User,
	}
	if snap.LoggedIn {
		resp.CSRFToken = h.csrf.Current()
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateProfile applies a partial profile update.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch domain.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	user, err := h.ctrl.UpdateProfile(r.Context(), patch)
	if err != nil {
		writeOpError(w, err)
		return
	}

	h.audit.Record(r.Context(), "auth.profile_update", user.Username, user.ID, "")

	writeJSON(w, http.StatusOK, user)
}

// ChangePasswordRequest is the password rotation payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword rotates the operator password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := h.ctrl.ChangePassword(r.Context(), req.OldPassword, req.NewPassword); err != nil {
		writeOpError(w, err)
		return
	}

	operator := ""
	if u := h.ctrl.Snapshot().User; u != nil {
		operator = u.Username
	}
	h.audit.Record(r.Context(), "auth.password_change", operator, "", "")

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ClearError dismisses the session error banner.
func (h *AuthHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	h.ctrl.ClearError()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrOperationInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNotLoggedIn):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
