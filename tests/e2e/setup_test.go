//go:build e2e
// +build e2e

// Package e2e verifies the full terminal flow against a real credential
// database and a stub backend: login, session restore, the liveness
// poll, role-guarded CRUD routes, and logout.
package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"edhumeni-admin/internal/api"
	"edhumeni-admin/internal/audit"
	"edhumeni-admin/internal/credstore"
	"edhumeni-admin/internal/domain"
	"edhumeni-admin/internal/guard"
	"edhumeni-admin/internal/handler"
	"edhumeni-admin/internal/middleware"
	"edhumeni-admin/internal/notify"
	"edhumeni-admin/internal/security"
	"edhumeni-admin/internal/session"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testTerminalID = "e2e-terminal"

var (
	testDB      *sql.DB
	testStore   *credstore.PostgresStore
	testCtrl    *session.Controller
	testTokens  *security.TokenManager
	baseURL     string
	testClient  *http.Client
	backendStub *backendServer
)

// TestMain brings up PostgreSQL, the stub backend, and the terminal
// gateway, then runs the suite against them.
func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cleanup, err := setupTestEnvironment(ctx)
	if err != nil {
		log.Fatalf("failed to setup test environment: %v", err)
	}

	code := m.Run()

	cleanup()
	os.Exit(code)
}

func setupTestEnvironment(ctx context.Context) (func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	pgCleanup, connStr, err := startPostgres(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start PostgreSQL: %w", err)
	}
	cleanups = append(cleanups, pgCleanup)

	testDB, err = sql.Open("postgres", connStr)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanups = append(cleanups, func() { testDB.Close() })

	if _, err := testDB.ExecContext(ctx, credstore.Schema); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	backendStub = newBackendServer()
	cleanups = append(cleanups, backendStub.Close)

	serverCleanup, err := setupTerminal(backendStub.URL())
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to setup terminal: %w", err)
	}
	cleanups = append(cleanups, serverCleanup)

	testClient = &http.Client{Timeout: 30 * time.Second}

	return cleanup, nil
}

// startPostgres starts a PostgreSQL container for the credential store.
func startPostgres(ctx context.Context) (func(), string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, "", err
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, "", err
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		container.Terminate(ctx)
		return nil, "", err
	}

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	// Give the server a moment after the ready log line.
	time.Sleep(2 * time.Second)

	return func() { container.Terminate(ctx) }, connStr, nil
}

// setupTerminal wires the gateway exactly as the binary does, with a
// short poll interval so liveness tests finish quickly.
func setupTerminal(backendURL string) (func(), error) {
	var err error
	testStore, err = credstore.NewPostgresStore(testDB, testTerminalID)
	if err != nil {
		return nil, err
	}

	client := api.New(backendURL, testStore)

	hub := notify.NewHub()
	hubCtx, hubCancel := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	testCtrl = session.New(testStore, client, hub, session.WithPollInterval(500*time.Millisecond))
	testCtrl.Initialize(context.Background())

	pollCtx, pollCancel := context.WithCancel(context.Background())
	testCtrl.Start(pollCtx)

	recorder := audit.NopRecorder{}
	testTokens = security.NewTokenManager()
	authHandler := handler.NewAuthHandler(testCtrl, recorder, testTokens)
	farmerHandler := handler.NewFarmerHandler(client, testCtrl, recorder)
	contractHandler := handler.NewContractHandler(client, testCtrl, recorder)

	r := chi.NewRouter()
	r.Use(middleware.Metrics())
	r.Get("/health", handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CSRF(testTokens))

		r.Post("/auth/login", authHandler.Login)
		r.Get("/auth/me", authHandler.Me)
		r.Post("/auth/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireAuth(testCtrl))
			r.Get("/farmers", farmerHandler.List)
		})

		r.Group(func(r chi.Router) {
			r.Use(guard.RequireRoles(testCtrl, domain.RoleAdmin, domain.RoleManager))
			r.Post("/contracts", contractHandler.Create)
		})
	})

	srv := httptest.NewServer(r)
	baseURL = srv.URL

	return func() {
		srv.Close()
		testCtrl.Close()
		pollCancel()
		hubCancel()
	}, nil
}

// backendServer stubs the e-Dhumeni backend API: it issues tokens for a
// known operator and serves a fixed farmer list to valid bearers.
type backendServer struct {
	srv *httptest.Server

	mu     sync.Mutex
	tokens map[string]bool
}

func newBackendServer() *backendServer {
	b := &backendServer{tokens: make(map[string]bool)}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/auth/login", b.handleLogin)
	mux.HandleFunc("/api/auth/me", b.handleMe)
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/farmers", b.requireToken(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"f1","name":"Tariro Moyo","region":"Manicaland"}]`))
	}))
	mux.HandleFunc("/api/contracts", b.requireToken(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"c1","status":"DRAFT"}`))
	}))

	b.srv = httptest.NewServer(mux)
	return b
}

func (b *backendServer) URL() string { return b.srv.URL }
func (b *backendServer) Close()      { b.srv.Close() }

func (b *backendServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds map[string]string
	json.NewDecoder(r.Body).Decode(&creds)

	if creds["username"] != "demo" || creds["password"] != "password123" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Invalid username or password"})
		return
	}

	token := fmt.Sprintf("tok-%d", time.Now().UnixNano())
	b.mu.Lock()
	b.tokens[token] = true
	b.mu.Unlock()

	json.NewEncoder(w).Encode(map[string]any{
		"token":    token,
		"userId":   "u1",
		"username": "demo",
		"email":    "d@x.com",
		"fullName": "Demo User",
		"roles":    []string{"USER"},
	})
}

func (b *backendServer) handleMe(w http.ResponseWriter, r *http.Request) {
	b.requireToken(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id":        "u1",
			"username":  "demo",
			"email":     "d@x.com",
			"full_name": "Demo User",
			"roles":     []string{"USER"},
		})
	})(w, r)
}

func (b *backendServer) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		ok := b.tokens[token]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
			return
		}
		next(w, r)
	}
}
