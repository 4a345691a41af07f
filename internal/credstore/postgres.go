package credstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"edhumeni-admin/internal/domain"
)

// PostgresStore keeps the credentials row in a shared database so a
// roaming operator can pick the session up from another terminal. Each
// terminal identity owns exactly one row; another process deleting the
// row is what the controller's periodic poll detects as a forced logout.
type PostgresStore struct {
	db         *sql.DB
	terminalID string

	setStmt      *sql.Stmt
	clearStmt    *sql.Stmt
	getTokenStmt *sql.Stmt
	getUserStmt  *sql.Stmt
	setUserStmt  *sql.Stmt
}

// NewPostgresStore prepares the statements for one terminal identity.
// Returns an error if statement preparation fails.
func NewPostgresStore(db *sql.DB, terminalID string) (*PostgresStore, error) {
	s := &PostgresStore{db: db, terminalID: terminalID}

	var err error
	s.setStmt, err = db.Prepare(`
		INSERT INTO terminal_credentials (terminal_id, token, profile, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (terminal_id)
		DO UPDATE SET token = $2, profile = $3, updated_at = $4
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare set statement: %w", err)
	}

	s.clearStmt, err = db.Prepare(`DELETE FROM terminal_credentials WHERE terminal_id = $1`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare clear statement: %w", err)
	}

	s.getTokenStmt, err = db.Prepare(`
		SELECT token FROM terminal_credentials WHERE terminal_id = $1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare getToken statement: %w", err)
	}

	s.getUserStmt, err = db.Prepare(`
		SELECT profile FROM terminal_credentials WHERE terminal_id = $1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare getUser statement: %w", err)
	}

	s.setUserStmt, err = db.Prepare(`
		UPDATE terminal_credentials SET profile = $2, updated_at = $3 WHERE terminal_id = $1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare setUser statement: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) SetAuth(ctx context.Context, token string, user *domain.User) error {
	var profile []byte
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return err
		}
		profile = raw
	}
	if _, err := s.setStmt.ExecContext(ctx, s.terminalID, token, profile, time.Now()); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}
	return nil
}

func (s *PostgresStore) ClearAuth(ctx context.Context) error {
	if _, err := s.clearStmt.ExecContext(ctx, s.terminalID); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetToken(ctx context.Context) (string, error) {
	var token string
	err := s.getTokenStmt.QueryRowContext(ctx, s.terminalID).Scan(&token)
	if err == sql.ErrNoRows || (err == nil && token == "") {
		return "", domain.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

func (s *PostgresStore) GetUser(ctx context.Context) (*domain.User, error) {
	var profile []byte
	err := s.getUserStmt.QueryRowContext(ctx, s.terminalID).Scan(&profile)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNoUser
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if len(profile) == 0 {
		return nil, domain.ErrNoUser
	}
	var user domain.User
	if err := json.Unmarshal(profile, &user); err != nil {
		// Corrupt persisted profile reads as absent.
		return nil, domain.ErrNoUser
	}
	return &user, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, patch domain.UserPatch) error {
	user, err := s.GetUser(ctx)
	if err != nil {
		return nil
	}
	raw, err := json.Marshal(patch.Apply(user))
	if err != nil {
		return err
	}
	if _, err := s.setUserStmt.ExecContext(ctx, s.terminalID, raw, time.Now()); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// Schema is the DDL for the credentials table, used by deployments and
// the e2e suite.
const Schema = `
CREATE TABLE IF NOT EXISTS terminal_credentials (
	terminal_id TEXT PRIMARY KEY,
	token       TEXT NOT NULL,
	profile     JSONB,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`
