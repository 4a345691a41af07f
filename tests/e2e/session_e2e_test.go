//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"edhumeni-admin/internal/domain"
)

// sessionCSRF holds the token captured from the latest login response so
// write requests can prove they came from the terminal UI.
var sessionCSRF string

func postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionCSRF != "" {
		req.Header.Set("X-CSRF-Token", sessionCSRF)
	}
	resp, err := testClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func getPath(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := testClient.Get(baseURL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// resetSession logs the terminal out so each test starts clean.
func resetSession(t *testing.T) {
	t.Helper()
	if err := testCtrl.Logout(context.Background()); err != nil {
		t.Fatalf("failed to reset session: %v", err)
	}
	testCtrl.ClearError()
	testTokens.Clear()
	sessionCSRF = ""
}

func login(t *testing.T, username, password string) *http.Response {
	t.Helper()
	resp := postJSON(t, "/api/v1/auth/login", map[string]any{
		"username": username,
		"password": password,
	})
	if token := resp.Header.Get("X-CSRF-Token"); token != "" {
		sessionCSRF = token
	}
	return resp
}

func TestSessionFlow(t *testing.T) {
	resetSession(t)

	t.Run("anonymous session state", func(t *testing.T) {
		resp := getPath(t, "/api/v1/auth/me")
		var state map[string]any
		decode(t, resp, &state)
		if state["logged_in"] == true {
			t.Error("expected logged_in=false before login")
		}
	})

	t.Run("guarded route rejects anonymous", func(t *testing.T) {
		resp := getPath(t, "/api/v1/farmers")
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := login(t, "demo", "wrong")
		var body map[string]string
		decode(t, resp, &body)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
		if body["error"] != "Invalid username or password" {
			t.Errorf("expected backend message relayed, got %q", body["error"])
		}
	})

	t.Run("login", func(t *testing.T) {
		resp := login(t, "demo", "password123")
		var user map[string]any
		decode(t, resp, &user)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if user["username"] != "demo" {
			t.Errorf("unexpected user %v", user)
		}
	})

	t.Run("session persisted in database", func(t *testing.T) {
		var token string
		err := testDB.QueryRow(
			`SELECT token FROM terminal_credentials WHERE terminal_id = $1`, testTerminalID,
		).Scan(&token)
		if err != nil || token == "" {
			t.Errorf("expected a persisted token, got %q (%v)", token, err)
		}
	})

	t.Run("proxied list with bearer", func(t *testing.T) {
		resp := getPath(t, "/api/v1/farmers")
		var farmers []map[string]any
		decode(t, resp, &farmers)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if len(farmers) != 1 || farmers[0]["name"] != "Tariro Moyo" {
			t.Errorf("unexpected farmers %v", farmers)
		}
	})

	t.Run("write without session token is rejected", func(t *testing.T) {
		// A cross-site page can ride the ambient operator session with a
		// simple POST but it cannot attach the token.
		req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/contracts",
			bytes.NewReader([]byte(`{"farmer_id":"f1"}`)))
		if err != nil {
			t.Fatalf("failed to build request: %v", err)
		}
		req.Header.Set("Content-Type", "text/plain")
		resp, err := testClient.Do(req)
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("expected 403 without session token, got %d", resp.StatusCode)
		}
	})

	t.Run("role denial carries context", func(t *testing.T) {
		resp := postJSON(t, "/api/v1/contracts", map[string]any{"farmer_id": "f1"})
		if resp.StatusCode != http.StatusForbidden {
			resp.Body.Close()
			t.Fatalf("expected 403 for USER creating contracts, got %d", resp.StatusCode)
		}

		var denial struct {
			Error         string   `json:"error"`
			Path          string   `json:"path"`
			RequiredRoles []string `json:"required_roles"`
			Recovery      []string `json:"recovery"`
		}
		decode(t, resp, &denial)

		if denial.Path != "/api/v1/contracts" {
			t.Errorf("expected attempted path, got %q", denial.Path)
		}
		if len(denial.RequiredRoles) != 2 {
			t.Errorf("expected required roles, got %v", denial.RequiredRoles)
		}
		if len(denial.Recovery) != 3 || denial.Recovery[2] != "logout" {
			t.Errorf("expected recovery actions, got %v", denial.Recovery)
		}
	})

	t.Run("logout clears everything", func(t *testing.T) {
		resp := postJSON(t, "/api/v1/auth/logout", nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		resp = getPath(t, "/api/v1/farmers")
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
		}

		var count int
		if err := testDB.QueryRow(
			`SELECT count(*) FROM terminal_credentials WHERE terminal_id = $1`, testTerminalID,
		).Scan(&count); err != nil || count != 0 {
			t.Errorf("expected credentials row removed, count=%d err=%v", count, err)
		}
	})
}

func TestForcedLogoutWhenProfileVanishes(t *testing.T) {
	resetSession(t)

	resp := login(t, "demo", "password123")
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed with %d", resp.StatusCode)
	}

	// Another terminal (or an admin) wipes the profile out from under us
	// while the token is still present. The liveness poll must notice and
	// clear the session.
	if _, err := testDB.Exec(
		`UPDATE terminal_credentials SET profile = NULL WHERE terminal_id = $1`, testTerminalID,
	); err != nil {
		t.Fatalf("failed to invalidate profile: %v", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	for {
		var count int
		if err := testDB.QueryRow(
			`SELECT count(*) FROM terminal_credentials WHERE terminal_id = $1`, testTerminalID,
		).Scan(&count); err != nil {
			t.Fatalf("failed to read credentials row: %v", err)
		}
		if count == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("poll never forced the logout")
		}
		time.Sleep(200 * time.Millisecond)
	}

	resp = getPath(t, "/api/v1/farmers")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after forced logout, got %d", resp.StatusCode)
	}
}

func TestPostgresStoreSemantics(t *testing.T) {
	resetSession(t)
	ctx := context.Background()

	t.Run("round trip and merge", func(t *testing.T) {
		user := &domain.User{
			ID:       "u1",
			Username: "demo",
			FullName: "Before",
			Roles:    []string{"USER"},
		}
		if err := testStore.SetAuth(ctx, "T-store", user); err != nil {
			t.Fatalf("SetAuth failed: %v", err)
		}

		token, err := testStore.GetToken(ctx)
		if err != nil || token != "T-store" {
			t.Fatalf("expected token round trip, got %q (%v)", token, err)
		}

		name := "After"
		if err := testStore.UpdateUser(ctx, domain.UserPatch{FullName: &name}); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		got, err := testStore.GetUser(ctx)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.FullName != "After" || got.ID != "u1" {
			t.Errorf("unexpected merged profile %+v", got)
		}
	})

	t.Run("corrupt profile reads as absent", func(t *testing.T) {
		if _, err := testDB.Exec(
			`UPDATE terminal_credentials SET profile = '42'::jsonb WHERE terminal_id = $1`, testTerminalID,
		); err != nil {
			t.Fatalf("failed to corrupt profile: %v", err)
		}

		if _, err := testStore.GetUser(ctx); err == nil {
			t.Error("expected corrupt profile to read as absent")
		}
		if _, err := testStore.GetToken(ctx); err != nil {
			t.Errorf("token must survive a corrupt profile: %v", err)
		}
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		if err := testStore.ClearAuth(ctx); err != nil {
			t.Fatalf("first clear failed: %v", err)
		}
		if err := testStore.ClearAuth(ctx); err != nil {
			t.Fatalf("second clear failed: %v", err)
		}
	})
}
