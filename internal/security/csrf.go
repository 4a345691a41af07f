// Package security holds the CSRF token manager for the gateway. Write
// routes are authorized by the process's ambient operator session, so
// without a per-request proof any page the operator's browser visits
// could fire state-changing requests at the terminal. The token is that
// proof: issued when a session starts, required on every unsafe method,
// invalidated at logout.
package security

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
)

var ErrInvalidToken = errors.New("invalid CSRF token")

// TokenManager issues and verifies the CSRF token for the terminal's
// single operator session. Tokens are cryptographically random and kept
// server-side only; verification is a constant-time comparison.
type TokenManager struct {
	mu    sync.RWMutex
	token string
}

// NewTokenManager creates a manager with no active token. Verify fails
// for everything until Issue is called.
func NewTokenManager() *TokenManager {
	return &TokenManager{}
}

// Issue mints a fresh 256-bit token for the current session, replacing
// any previous one, and returns it as a 64-character hex string.
func (tm *TokenManager) Issue() (string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(randomBytes)

	tm.mu.Lock()
	tm.token = token
	tm.mu.Unlock()
	return token, nil
}

// Current returns the active token, or "" when none has been issued.
func (tm *TokenManager) Current() string {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.token
}

// Verify reports whether submitted matches the active token. Always
// false when no token is active or the submission is empty.
func (tm *TokenManager) Verify(submitted string) bool {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	if tm.token == "" || submitted == "" {
		return false
	}
	return hmac.Equal([]byte(tm.token), []byte(submitted))
}

// Clear invalidates the active token. Called at logout and on forced
// session teardown.
func (tm *TokenManager) Clear() {
	tm.mu.Lock()
	tm.token = ""
	tm.mu.Unlock()
}
