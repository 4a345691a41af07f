package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"edhumeni-admin/internal/security"
)

// CSRF validates the session's CSRF token on state-changing requests.
// The gateway authorizes writes by the process's ambient operator
// session, so the token is the per-request proof that the call came from
// the terminal UI and not from an arbitrary page in the operator's
// browser firing a cross-site request.
//
// Validation flow:
// 1. Skip for safe HTTP methods (GET, HEAD, OPTIONS)
// 2. Skip for exempt endpoints (health, metrics, websocket, login)
// 3. Extract the token from the X-CSRF-Token or X-XSRF-Token header
// 4. Verify against the active session token in constant time
// 5. Reject with 403 Forbidden and log the failure if invalid
func CSRF(tokens *security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			if isExemptPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			submitted := extractCSRFToken(r)
			if submitted == "" {
				logCSRFFailure(r, "missing token")
				http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
				return
			}

			if !tokens.Verify(submitted) {
				logCSRFFailure(r, "invalid token")
				http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isSafeMethod returns true for methods that must not modify state and
// therefore need no CSRF token.
func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}

// isExemptPath returns true for endpoints that skip CSRF validation:
// infrastructure endpoints and the login route, which runs before any
// token exists.
func isExemptPath(path string) bool {
	exemptPaths := []string{
		"/health",
		"/metrics",
		"/ws/",
		"/api/v1/auth/login",
	}

	for _, exemptPath := range exemptPaths {
		if strings.HasPrefix(path, exemptPath) {
			return true
		}
	}
	return false
}

// extractCSRFToken reads the token from the X-CSRF-Token header, falling
// back to the X-XSRF-Token spelling.
func extractCSRFToken(r *http.Request) string {
	if token := r.Header.Get("X-CSRF-Token"); token != "" {
		return token
	}
	return r.Header.Get("X-XSRF-Token")
}

func logCSRFFailure(r *http.Request, reason string) {
	slog.Warn("CSRF validation failed",
		slog.String("reason", reason),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)
}
