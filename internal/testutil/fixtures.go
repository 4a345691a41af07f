package testutil

import (
	"edhumeni-admin/internal/api"
	"edhumeni-admin/internal/domain"
)

// NewTestUser returns a basic USER-role profile.
func NewTestUser() *domain.User {
	return &domain.User{
		ID:       "u1",
		Username: "demo",
		Email:    "d@x.com",
		FullName: "Demo User",
		Roles:    []string{domain.RoleUser},
	}
}

// NewTestAdmin returns a profile carrying every role.
func NewTestAdmin() *domain.User {
	return &domain.User{
		ID:       "a1",
		Username: "admin",
		Email:    "admin@edhumeni.example",
		FullName: "Terminal Admin",
		Roles: []string{
			domain.RoleAdmin,
			domain.RoleManager,
			domain.RoleExtensionOfficer,
			domain.RoleUser,
		},
	}
}

// NewLoginResult returns the backend login response matching NewTestUser.
func NewLoginResult() *api.LoginResult {
	return &api.LoginResult{
		Token:    "T1",
		UserID:   "u1",
		Username: "demo",
		Email:    "d@x.com",
		FullName: "Demo User",
		Roles:    []string{domain.RoleUser},
	}
}
