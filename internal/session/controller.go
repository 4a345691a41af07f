package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"edhumeni-admin/internal/api"
	"edhumeni-admin/internal/domain"
	"edhumeni-admin/internal/notify"
	"edhumeni-admin/internal/observability"
)

// SessionExpiredMessage is surfaced when a persisted token can no longer
// be resolved to a user at startup.
const SessionExpiredMessage = "Session expired. Please login again."

const (
	loginFallback    = "Invalid username or password"
	profileFallback  = "Failed to update profile"
	passwordFallback = "Failed to change password"
)

// DefaultPollInterval is how often session liveness is re-checked.
const DefaultPollInterval = 60 * time.Second

var (
	// ErrOperationInFlight rejects a second concurrent call of the same
	// operation kind instead of letting the responses race.
	ErrOperationInFlight = errors.New("operation already in flight")

	ErrNotLoggedIn = errors.New("not logged in")
)

// AuthAPI is the slice of the backend client the controller consumes.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*api.LoginResult, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, patch domain.UserPatch) (domain.UserPatch, error)
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error
	Logout(ctx context.Context) error
}

// OpError is raised by Login/UpdateProfile/ChangePassword after the
// user-facing message has been resolved. Error() returns exactly the
// message that was written to the session error state.
type OpError struct {
	Msg   string
	cause error
}

func (e *OpError) Error() string { return e.Msg }
func (e *OpError) Unwrap() error { return e.cause }

type opKind int

const (
	opLogin opKind = iota
	opUpdateProfile
	opChangePassword
)

// Snapshot is an immutable view of the session state.
type Snapshot struct {
	LoggedIn    bool
	Loading     bool
	AuthChecked bool
	Error       string
	User        *domain.User
}

// Controller owns the single operator session of a terminal process. It
// restores persisted credentials on Initialize, keeps in-memory and
// persisted state in step, and re-checks liveness on a fixed interval
// until Close.
type Controller struct {
	store    domain.CredentialStore
	api      AuthAPI
	notifier notify.Notifier

	pollInterval time.Duration

	mu          sync.Mutex
	user        *domain.User
	loggedIn    bool
	loading     bool
	authChecked bool
	errMsg      string
	inFlight    map[opKind]bool

	done      chan struct{}
	initOnce  sync.Once
	closeOnce sync.Once
}

// Option configures a Controller.
type Option func(*Controller)

// WithPollInterval overrides the liveness check interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.pollInterval = d
	}
}

// New creates a controller. Call Initialize before serving and Close on
// shutdown.
func New(store domain.CredentialStore, authAPI AuthAPI, notifier notify.Notifier, opts ...Option) *Controller {
	c := &Controller{
		store:        store,
		api:          authAPI,
		notifier:     notifier,
		pollInterval: DefaultPollInterval,
		inFlight:     make(map[opKind]bool),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize restores a persisted session, validating the token against
// the backend. Runs its logic at most once, even under concurrent calls.
// Failures are absorbed into state, never returned.
func (c *Controller) Initialize(ctx context.Context) {
	c.initOnce.Do(func() {
		c.initialize(ctx)
	})
}

func (c *Controller) initialize(ctx context.Context) {
	if _, err := c.store.GetToken(ctx); err != nil {
		c.mu.Lock()
		c.authChecked = true
		c.mu.Unlock()
		return
	}

	c.setLoading(true)
	user, err := c.api.CurrentUser(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if clearErr := c.store.ClearAuth(ctx); clearErr != nil {
			slog.Error("failed to clear stale credentials", slog.String("error", clearErr.Error()))
		}
		c.user = nil
		c.loggedIn = false
		c.errMsg = SessionExpiredMessage
		observability.ForcedLogoutsTotal.WithLabelValues("init").Inc()
		slog.Warn("persisted session rejected by backend", slog.String("error", err.Error()))
	} else {
		c.user = user
		c.loggedIn = true
	}
	c.loading = false
	c.authChecked = true
}

// Start runs the periodic liveness check until ctx is cancelled or Close
// is called.
func (c *Controller) Start(ctx context.Context) {
	go c.pollLoop(ctx)
}

// Close stops the poll loop. Idempotent; the controller mutates no state
// after teardown.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Controller) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.checkSession(ctx)
		}
	}
}

// checkSession is the best-effort liveness check: a persisted token with
// no resolvable persisted user (cleared by another terminal sharing the
// store) forces a logout. It never consults the backend and never raises.
func (c *Controller) checkSession(ctx context.Context) {
	observability.SessionPollsTotal.Inc()

	if _, err := c.store.GetToken(ctx); err != nil {
		return
	}
	if _, err := c.store.GetUser(ctx); err == nil {
		return
	}

	if err := c.store.ClearAuth(ctx); err != nil {
		slog.Error("failed to clear credentials", slog.String("error", err.Error()))
	}

	c.mu.Lock()
	c.user = nil
	c.loggedIn = false
	c.mu.Unlock()

	observability.ForcedLogoutsTotal.WithLabelValues("poll").Inc()
	slog.Warn("session invalidated externally, forcing logout")
}

// Login authenticates the operator and persists the resulting session.
// On failure the store is untouched and the returned error carries the
// resolved user-facing message.
func (c *Controller) Login(ctx context.Context, username, password string, rememberMe bool) (*domain.User, error) {
	if !c.begin(opLogin) {
		return nil, ErrOperationInFlight
	}
	defer c.end(opLogin)

	c.mu.Lock()
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	result, err := c.api.Login(ctx, username, password)
	if err == nil {
		user := &domain.User{
			ID:         result.UserID,
			Username:   result.Username,
			Email:      result.Email,
			FullName:   result.FullName,
			Roles:      result.Roles,
			RememberMe: rememberMe,
		}
		err = c.store.SetAuth(ctx, result.Token, user)
		if err == nil {
			c.mu.Lock()
			c.user = user
			c.loggedIn = true
			c.loading = false
			c.mu.Unlock()

			observability.LoginsTotal.WithLabelValues("success").Inc()
			return user.Clone(), nil
		}
	}

	msg := resolveMessage(err, loginFallback)
	c.mu.Lock()
	c.errMsg = msg
	c.loading = false
	c.mu.Unlock()

	observability.LoginsTotal.WithLabelValues("failure").Inc()
	return nil, &OpError{Msg: msg, cause: err}
}

// Logout clears persisted and in-memory session state synchronously.
// The backend revocation is best-effort and not awaited.
func (c *Controller) Logout(ctx context.Context) error {
	go func() {
		_ = c.api.Logout(context.Background())
	}()

	if err := c.store.ClearAuth(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.user = nil
	c.loggedIn = false
	c.mu.Unlock()
	return nil
}

// UpdateProfile forwards a partial profile update to the backend and
// merges the fields the backend reports changed onto the in-memory and
// persisted user. Unspecified fields are preserved.
func (c *Controller) UpdateProfile(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	if !c.begin(opUpdateProfile) {
		return nil, ErrOperationInFlight
	}
	defer c.end(opUpdateProfile)

	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil, ErrNotLoggedIn
	}
	c.loading = true
	c.mu.Unlock()

	changed, err := c.api.UpdateProfile(ctx, patch)
	if err != nil {
		msg := resolveMessage(err, profileFallback)
		c.mu.Lock()
		c.errMsg = msg
		c.loading = false
		c.mu.Unlock()

		c.notifier.ShowError(msg)
		return nil, &OpError{Msg: msg, cause: err}
	}

	c.mu.Lock()
	c.user = changed.Apply(c.user)
	merged := c.user.Clone()
	c.loading = false
	c.mu.Unlock()

	if err := c.store.UpdateUser(ctx, changed); err != nil {
		slog.Error("failed to persist profile update", slog.String("error", err.Error()))
	}

	c.notifier.ShowSuccess("Profile updated successfully")
	return merged, nil
}

// ChangePassword rotates the operator password. Stored credentials are
// untouched either way; the existing token stays valid.
func (c *Controller) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if !c.begin(opChangePassword) {
		return ErrOperationInFlight
	}
	defer c.end(opChangePassword)

	if err := c.api.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		msg := resolveMessage(err, passwordFallback)
		c.mu.Lock()
		c.errMsg = msg
		c.mu.Unlock()

		c.notifier.ShowError(msg)
		return &OpError{Msg: msg, cause: err}
	}

	c.notifier.ShowSuccess("Password changed successfully")
	return nil
}

// ClearError dismisses the current error message. No other state changes.
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.errMsg = ""
	c.mu.Unlock()
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		LoggedIn:    c.loggedIn,
		Loading:     c.loading,
		AuthChecked: c.authChecked,
		Error:       c.errMsg,
		User:        c.user.Clone(),
	}
}

// IsAuthenticated reports whether a token is persisted.
func (c *Controller) IsAuthenticated(ctx context.Context) bool {
	return IsAuthenticated(ctx, c.store)
}

// HasRole reports whether the persisted user carries the role.
func (c *Controller) HasRole(ctx context.Context, role string) bool {
	return HasRole(ctx, c.store, role)
}

func (c *Controller) IsAdmin(ctx context.Context) bool {
	return c.HasRole(ctx, domain.RoleAdmin)
}

func (c *Controller) IsManager(ctx context.Context) bool {
	return c.HasRole(ctx, domain.RoleManager)
}

func (c *Controller) IsExtensionOfficer(ctx context.Context) bool {
	return c.HasRole(ctx, domain.RoleExtensionOfficer)
}

func (c *Controller) IsUser(ctx context.Context) bool {
	return c.HasRole(ctx, domain.RoleUser)
}

func (c *Controller) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

func (c *Controller) begin(op opKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[op] {
		return false
	}
	c.inFlight[op] = true
	return true
}

func (c *Controller) end(op opKind) {
	c.mu.Lock()
	delete(c.inFlight, op)
	c.mu.Unlock()
}

// resolveMessage applies the uniform message-resolution order: the
// backend's structured message, then the error's own message, then the
// operation-specific fallback.
func resolveMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
