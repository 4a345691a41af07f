// Package guard gates UI routes on the operator session. Decisions come
// from the session controller's role checks; a denial carries enough
// context for the UI to explain the refusal and offer a way out.
package guard

import (
	"encoding/json"
	"net/http"

	"edhumeni-admin/internal/observability"
	"edhumeni-admin/internal/session"
)

// Denial is the 403 body: the path the operator attempted, the roles
// that would have been required, and the recovery actions the denial
// screen offers.
type Denial struct {
	Error         string   `json:"error"`
	Path          string   `json:"path"`
	RequiredRoles []string `json:"required_roles"`
	Recovery      []string `json:"recovery"`
}

var recoveryActions = []string{"back", "dashboard", "logout"}

// RequireAuth rejects requests when no session token is persisted.
func RequireAuth(ctrl *session.Controller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ctrl.IsAuthenticated(r.Context()) {
				http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, withOperator(r, ctrl))
		})
	}
}

// RequireRoles allows the request through when the operator holds ANY of
// the given roles. An unauthenticated request gets 401; an authenticated
// one without a matching role gets a 403 Denial.
func RequireRoles(ctrl *session.Controller, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if !ctrl.IsAuthenticated(ctx) {
				http.Error(w, `{"error":"Not authenticated"}`, http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if ctrl.HasRole(ctx, role) {
					next.ServeHTTP(w, withOperator(r, ctrl))
					return
				}
			}

			observability.FromContext(ctx).Warn("route denied",
				"path", r.URL.Path,
				"required_roles", roles,
			)
			deny(w, r.URL.Path, roles)
		})
	}
}

// withOperator tags the request context with the acting operator so
// downstream log lines carry the username.
func withOperator(r *http.Request, ctrl *session.Controller) *http.Request {
	if u := ctrl.Snapshot().User; u != nil {
		return r.WithContext(observability.WithOperator(r.Context(), u.Username))
	}
	return r
}

func deny(w http.ResponseWriter, path string, roles []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(Denial{
		Error:         "Access denied",
		Path:          path,
		RequiredRoles: roles,
		Recovery:      recoveryActions,
	})
}
