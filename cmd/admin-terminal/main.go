package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edhumeni-admin/internal/api"
	"edhumeni-admin/internal/audit"
	"edhumeni-admin/internal/config"
	"edhumeni-admin/internal/credstore"
	"edhumeni-admin/internal/domain"
	"edhumeni-admin/internal/guard"
	"edhumeni-admin/internal/handler"
	"edhumeni-admin/internal/middleware"
	"edhumeni-admin/internal/notify"
	"edhumeni-admin/internal/observability"
	"edhumeni-admin/internal/security"
	"edhumeni-admin/internal/session"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "json"
	}
	observability.InitLogger(logLevel, logFormat)

	slog.Info("starting admin terminal")

	store, db := buildStore(cfg)
	if db != nil {
		defer db.Close()
	}

	client := api.New(cfg.BackendURL, store)

	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.RabbitMQURL != "" {
		publisher, err := audit.NewPublisher(cfg.RabbitMQURL)
		if err != nil {
			slog.Error("failed to connect audit publisher", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer publisher.Close()
		recorder = publisher
		slog.Info("audit trail enabled")
	}

	hub := notify.NewHub()
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go func() {
		if err := hub.Run(hubCtx); err != nil && err != context.Canceled {
			slog.Error("notification hub error", slog.String("error", err.Error()))
		}
	}()

	ctrl := session.New(store, client, hub, session.WithPollInterval(cfg.PollInterval))
	defer ctrl.Close()

	initCtx, initCancel := context.WithTimeout(context.Background(), 15*time.Second)
	ctrl.Initialize(initCtx)
	initCancel()
	slog.Info("session restored", slog.Bool("logged_in", ctrl.Snapshot().LoggedIn))

	csrfTokens := security.NewTokenManager()
	if ctrl.Snapshot().LoggedIn {
		if _, err := csrfTokens.Issue(); err != nil {
			slog.Error("failed to issue csrf token", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctrl.Start(ctx)

	authHandler := handler.NewAuthHandler(ctrl, recorder, csrfTokens)
	farmerHandler := handler.NewFarmerHandler(client, ctrl, recorder)
	contractHandler := handler.NewContractHandler(client, ctrl, recorder)
	officerHandler := handler.NewOfficerHandler(client, ctrl, recorder)
	dashboardHandler := handler.NewDashboardHandler(client)
	notificationsHandler := handler.NewNotificationsHandler(hub, ctrl, cfg.AllowedOrigins)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(middleware.ParseOrigins(cfg.AllowedOrigins)))
	r.Use(middleware.Metrics())
	r.Use(middleware.OpenAPIValidator(middleware.DefaultOpenAPIValidatorConfig()))

	r.Get("/health", handler.Health)
	r.Get("/health/ready", handler.Ready(cfg.BackendURL, db))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		authLimiter := middleware.NewRateLimiter(ctx, 5, 10)
		apiLimiter := middleware.NewRateLimiter(ctx, 20, 50)

		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware())
			r.Post("/auth/login", authHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(apiLimiter.Middleware())
			r.Use(middleware.CSRF(csrfTokens))

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/logout", authHandler.Logout)
			r.Post("/auth/clear-error", authHandler.ClearError)

			r.Group(func(r chi.Router) {
				r.Use(guard.RequireAuth(ctrl))
				r.Put("/auth/profile", authHandler.UpdateProfile)
				r.Post("/auth/password", authHandler.ChangePassword)
				r.Get("/dashboard", dashboardHandler.Summary)
				r.Get("/farmers", farmerHandler.List)
				r.Get("/farmers/{id}", farmerHandler.Get)
				r.Get("/contracts", contractHandler.List)
				r.Get("/contracts/{id}", contractHandler.Get)
				r.Get("/officers", officerHandler.List)
				r.Get("/officers/{id}", officerHandler.Get)
			})

			// Farmer records are maintained in the field by AEOs too.
			r.Group(func(r chi.Router) {
				r.Use(guard.RequireRoles(ctrl, domain.RoleAdmin, domain.RoleManager, domain.RoleExtensionOfficer))
				r.Post("/farmers", farmerHandler.Create)
				r.Put("/farmers/{id}", farmerHandler.Update)
				r.Delete("/farmers/{id}", farmerHandler.Delete)
			})

			r.Group(func(r chi.Router) {
				r.Use(guard.RequireRoles(ctrl, domain.RoleAdmin, domain.RoleManager))
				r.Post("/contracts", contractHandler.Create)
				r.Put("/contracts/{id}", contractHandler.Update)
				r.Delete("/contracts/{id}", contractHandler.Delete)
				r.Post("/officers", officerHandler.Create)
				r.Put("/officers/{id}", officerHandler.Update)
				r.Delete("/officers/{id}", officerHandler.Delete)
			})
		})
	})

	// Auth handled internally so the upgrade can reject before hijacking.
	r.Get("/ws/notifications", notificationsHandler.HandleConnection)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("admin terminal listening", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down terminal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}

	ctrl.Close()
	cancel()
	hubCancel()

	time.Sleep(100 * time.Millisecond)

	slog.Info("terminal stopped gracefully")
}

// buildStore constructs the configured credential store backend. The
// returned *sql.DB is non-nil only for the postgres backend.
func buildStore(cfg *config.Config) (domain.CredentialStore, *sql.DB) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := config.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}

		pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			slog.Error("database ping failed", slog.String("error", err.Error()))
			os.Exit(1)
		}

		store, err := credstore.NewPostgresStore(db, cfg.TerminalID)
		if err != nil {
			slog.Error("failed to build credential store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("using postgres credential store", slog.String("terminal_id", cfg.TerminalID))
		return store, db

	default:
		store, err := credstore.NewFileStore(cfg.CredentialsPath)
		if err != nil {
			slog.Error("failed to create credential file", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("using file credential store", slog.String("path", cfg.CredentialsPath))
		return store, nil
	}
}
