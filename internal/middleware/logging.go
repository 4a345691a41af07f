package middleware

import (
	"net/http"
	"time"

	"edhumeni-admin/internal/observability"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger threads the chi request ID into the logging context and
// emits one structured line per completed request.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
				ctx = observability.WithRequestID(ctx, reqID)
				r = r.WithContext(ctx)
			}

			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			observability.FromContext(ctx).Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
