package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// Health returns basic health check
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Ready reports readiness: the backend API must answer and, when the
// postgres store backend is in use, the credential database must ping.
// db may be nil for the file store backend.
func Ready(backendURL string, db *sql.DB) http.HandlerFunc {
	client := &http.Client{Timeout: 5 * time.Second}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]HealthCheckResult{
			"backend": checkBackend(ctx, client, backendURL),
		}
		if db != nil {
			checks["database"] = checkDatabase(ctx, db)
		}

		allHealthy := true
		for _, c := range checks {
			if c.Status != "up" {
				allHealthy = false
			}
		}

		response := map[string]any{
			"timestamp": time.Now().Format(time.RFC3339),
			"checks":    checks,
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			response["status"] = "ready"
			w.WriteHeader(http.StatusOK)
		} else {
			response["status"] = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

func checkBackend(ctx context.Context, client *http.Client, baseURL string) HealthCheckResult {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return HealthCheckResult{Status: "down", Error: err.Error()}
	}

	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return HealthCheckResult{Status: "down", LatencyMs: latency.Milliseconds(), Error: err.Error()}
	}
	resp.Body.Close()

	if resp.StatusCode >= 500 {
		return HealthCheckResult{Status: "down", LatencyMs: latency.Milliseconds(), Error: resp.Status}
	}
	return HealthCheckResult{Status: "up", LatencyMs: latency.Milliseconds()}
}

func checkDatabase(ctx context.Context, db *sql.DB) HealthCheckResult {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	if err != nil {
		return HealthCheckResult{Status: "down", LatencyMs: latency.Milliseconds(), Error: err.Error()}
	}
	return HealthCheckResult{Status: "up", LatencyMs: latency.Milliseconds()}
}
