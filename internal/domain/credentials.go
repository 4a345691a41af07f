package domain

import (
	"context"
	"errors"
)

var (
	ErrNoToken = errors.New("no token persisted")
	ErrNoUser  = errors.New("no user persisted")
)

// CredentialStore is the persisted half of the operator session: the bearer
// token and the user profile, stored together under a single schema.
//
// Implementations must treat a missing or corrupt persisted value as absent
// (ErrNoToken / ErrNoUser) rather than failing, and ClearAuth must be
// idempotent. A token and its user are written together by SetAuth so the
// store never holds a half-written pair.
type CredentialStore interface {
	SetAuth(ctx context.Context, token string, user *User) error
	ClearAuth(ctx context.Context) error
	GetToken(ctx context.Context) (string, error)
	GetUser(ctx context.Context) (*User, error)

	// UpdateUser merges the patch onto the persisted user and persists the
	// result. A no-op when no user is currently persisted.
	UpdateUser(ctx context.Context, patch UserPatch) error
}
