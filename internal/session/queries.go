// Package session holds the operator session: the controller that owns
// login/logout and session liveness, and the pure query helpers consumed
// by the route guard.
package session

import (
	"context"

	"edhumeni-admin/internal/domain"
)

// IsAuthenticated reports whether a token is currently persisted.
func IsAuthenticated(ctx context.Context, store domain.CredentialStore) bool {
	_, err := store.GetToken(ctx)
	return err == nil
}

// HasRole reports whether a user is persisted and carries the role.
// With no persisted user every role check is false, including "".
func HasRole(ctx context.Context, store domain.CredentialStore, role string) bool {
	user, err := store.GetUser(ctx)
	if err != nil {
		return false
	}
	return user.HasRole(role)
}
