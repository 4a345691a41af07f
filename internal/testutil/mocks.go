// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the admin terminal.
package testutil

import (
	"context"
	"errors"
	"sync"

	"edhumeni-admin/internal/api"
	"edhumeni-admin/internal/domain"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
	ErrMockNotFound       = errors.New("mock: not found")
)

// MockCredentialStore implements domain.CredentialStore for testing.
// Set the Func fields to customize behavior; otherwise it behaves like
// an in-memory store.
type MockCredentialStore struct {
	mu sync.RWMutex

	SetAuthFunc    func(ctx context.Context, token string, user *domain.User) error
	ClearAuthFunc  func(ctx context.Context) error
	GetTokenFunc   func(ctx context.Context) (string, error)
	GetUserFunc    func(ctx context.Context) (*domain.User, error)
	UpdateUserFunc func(ctx context.Context, patch domain.UserPatch) error

	Token string
	User  *domain.User

	ClearCalls int
}

func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{}
}

func (m *MockCredentialStore) SetAuth(ctx context.Context, token string, user *domain.User) error {
	if m.SetAuthFunc != nil {
		return m.SetAuthFunc(ctx, token, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Token = token
	m.User = user.Clone()
	return nil
}

func (m *MockCredentialStore) ClearAuth(ctx context.Context) error {
	if m.ClearAuthFunc != nil {
		return m.ClearAuthFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Token = ""
	m.User = nil
	m.ClearCalls++
	return nil
}

func (m *MockCredentialStore) GetToken(ctx context.Context) (string, error) {
	if m.GetTokenFunc != nil {
		return m.GetTokenFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Token == "" {
		return "", domain.ErrNoToken
	}
	return m.Token, nil
}

func (m *MockCredentialStore) GetUser(ctx context.Context) (*domain.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.User == nil {
		return nil, domain.ErrNoUser
	}
	return m.User.Clone(), nil
}

func (m *MockCredentialStore) UpdateUser(ctx context.Context, patch domain.UserPatch) error {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, patch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.User == nil {
		return nil
	}
	m.User = patch.Apply(m.User)
	return nil
}

// MockAuthAPI implements session.AuthAPI for testing.
type MockAuthAPI struct {
	LoginFunc          func(ctx context.Context, username, password string) (*api.LoginResult, error)
	CurrentUserFunc    func(ctx context.Context) (*domain.User, error)
	UpdateProfileFunc  func(ctx context.Context, patch domain.UserPatch) (domain.UserPatch, error)
	ChangePasswordFunc func(ctx context.Context, oldPassword, newPassword string) error
	LogoutFunc         func(ctx context.Context) error
}

func (m *MockAuthAPI) Login(ctx context.Context, username, password string) (*api.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockAuthAPI) CurrentUser(ctx context.Context) (*domain.User, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockAuthAPI) UpdateProfile(ctx context.Context, patch domain.UserPatch) (domain.UserPatch, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, patch)
	}
	return domain.UserPatch{}, ErrMockNotImplemented
}

func (m *MockAuthAPI) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, oldPassword, newPassword)
	}
	return ErrMockNotImplemented
}

func (m *MockAuthAPI) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

// MockNotifier records toasts for assertions.
type MockNotifier struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
}

func (m *MockNotifier) ShowSuccess(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Successes = append(m.Successes, message)
}

func (m *MockNotifier) ShowError(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, message)
}

// MockRecorder records audit events for assertions.
type MockRecorder struct {
	mu      sync.Mutex
	Actions []string
}

func (m *MockRecorder) Record(ctx context.Context, action, operator, entityID, detail string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Actions = append(m.Actions, action)
}
