package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Well-known role names attached to user profiles by the backend.
const (
	RoleAdmin            = "ADMIN"
	RoleManager          = "MANAGER"
	RoleExtensionOfficer = "AEO"
	RoleUser             = "USER"
)

// User is the operator profile as returned by the backend and persisted
// alongside the session token.
type User struct {
	ID         string   `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	FullName   string   `json:"full_name"`
	Roles      []string `json:"roles"`
	RememberMe bool     `json:"remember_me"`
}

// HasRole reports whether the profile carries the given role.
// Matching is case-sensitive and ignores duplicates in the slice.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the internal role slice to mutation.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp
}

// UserPatch is a partial profile update. Nil fields are left untouched
// by Apply, so unspecified fields are preserved across a merge.
type UserPatch struct {
	Username *string   `json:"username,omitempty"`
	Email    *string   `json:"email,omitempty"`
	FullName *string   `json:"full_name,omitempty"`
	Roles    *[]string `json:"roles,omitempty"`
}

// Apply merges the patch onto a copy of u and returns the result.
func (p UserPatch) Apply(u *User) *User {
	merged := u.Clone()
	if merged == nil {
		return nil
	}
	if p.Username != nil {
		merged.Username = *p.Username
	}
	if p.Email != nil {
		merged.Email = *p.Email
	}
	if p.FullName != nil {
		merged.FullName = *p.FullName
	}
	if p.Roles != nil {
		merged.Roles = append([]string(nil), (*p.Roles)...)
	}
	return merged
}
