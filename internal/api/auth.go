package api

import (
	"context"

	"edhumeni-admin/internal/domain"
)

// LoginResult is the backend's successful login response.
type LoginResult struct {
	Token    string   `json:"token"`
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"fullName"`
	Roles    []string `json:"roles"`
}

// Login authenticates against the backend. Unauthenticated call.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	req := map[string]string{
		"username": username,
		"password": password,
	}
	var result LoginResult
	if err := c.send(ctx, "POST", "/api/auth/login", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CurrentUser fetches the profile belonging to the current token.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.get(ctx, "/api/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile sends a partial profile update. The backend responds with
// the fields it actually changed, wrapped in a data envelope.
func (c *Client) UpdateProfile(ctx context.Context, patch domain.UserPatch) (domain.UserPatch, error) {
	var resp struct {
		Data domain.UserPatch `json:"data"`
	}
	if err := c.send(ctx, "PUT", "/api/auth/profile", patch, &resp); err != nil {
		return domain.UserPatch{}, err
	}
	return resp.Data, nil
}

// ChangePassword rotates the operator password. The current token stays
// valid afterwards.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	req := map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}
	return c.send(ctx, "POST", "/api/auth/change-password", req, nil)
}

// Logout tells the backend to revoke the token. Fire-and-forget: the
// controller never waits on or inspects the result.
func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, "POST", "/api/auth/logout", nil, nil)
}
