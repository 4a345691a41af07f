package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// OpenAPIValidatorConfig controls request validation against the gateway
// API contract.
type OpenAPIValidatorConfig struct {
	Enabled  bool
	SpecPath string
	// SkipPaths bypass validation (health, metrics, websocket, UI pages).
	SkipPaths []string
}

// DefaultOpenAPIValidatorConfig enables validation outside production.
func DefaultOpenAPIValidatorConfig() *OpenAPIValidatorConfig {
	env := os.Getenv("ENVIRONMENT")
	isDev := env != "production" && env != "prod"

	return &OpenAPIValidatorConfig{
		Enabled:  isDev,
		SpecPath: "artifacts/openapi.yaml",
		SkipPaths: []string{
			"/health",
			"/metrics",
			"/ws/notifications",
		},
	}
}

// OpenAPIValidator validates incoming requests against the OpenAPI 3.0
// contract in SpecPath. A spec that fails to load degrades to a no-op so
// a bad artifact never takes the terminal down.
func OpenAPIValidator(config *OpenAPIValidatorConfig) func(next http.Handler) http.Handler {
	if config == nil {
		config = DefaultOpenAPIValidatorConfig()
	}

	noop := func(next http.Handler) http.Handler { return next }

	if !config.Enabled {
		slog.Info("openapi validation disabled")
		return noop
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(config.SpecPath)
	if err != nil {
		slog.Error("failed to load openapi spec",
			slog.String("path", config.SpecPath),
			slog.String("error", err.Error()))
		return noop
	}
	if err := doc.Validate(loader.Context); err != nil {
		slog.Error("openapi spec invalid", slog.String("error", err.Error()))
		return noop
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		slog.Error("failed to build openapi router", slog.String("error", err.Error()))
		return noop
	}

	slog.Info("openapi request validation enabled", slog.String("spec", config.SpecPath))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range config.SkipPaths {
				if r.URL.Path == skip || strings.HasPrefix(r.URL.Path, skip+"/") {
					next.ServeHTTP(w, r)
					return
				}
			}

			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				// Unknown routes fall through to the mux's own 404/405.
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				slog.Debug("request failed openapi validation",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()))
				http.Error(w, `{"error":"Invalid request"}`, http.StatusBadRequest)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
