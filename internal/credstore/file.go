// Package credstore provides implementations of domain.CredentialStore,
// the persisted half of the operator session. The file store is the
// default backend: a single JSON credentials document on local disk,
// playing the role browser storage plays for the web front end.
package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"edhumeni-admin/internal/domain"
)

// credentialsDoc is the single persisted schema: token and user live in
// one document so they are always written (and cleared) together.
type credentialsDoc struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user,omitempty"`
}

// FileStore persists credentials to a JSON file with an atomic
// temp-and-rename write. Safe for concurrent use within one process.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore at path. The parent directory is
// created if missing.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) SetAuth(ctx context.Context, token string, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := credentialsDoc{Token: token}
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return err
		}
		doc.User = raw
	}
	return s.write(&doc)
}

// ClearAuth removes the credentials document. Idempotent: clearing an
// already-empty store succeeds.
func (s *FileStore) ClearAuth(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.read()
	if doc == nil || doc.Token == "" {
		return "", domain.ErrNoToken
	}
	return doc.Token, nil
}

func (s *FileStore) GetUser(ctx context.Context) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readUser()
}

// UpdateUser merges the patch onto the persisted user and writes the
// result back. A no-op when no user is persisted.
func (s *FileStore) UpdateUser(ctx context.Context, patch domain.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.readUser()
	if err != nil {
		return nil
	}

	doc := s.read()
	raw, err := json.Marshal(patch.Apply(user))
	if err != nil {
		return err
	}
	doc.User = raw
	return s.write(doc)
}

// read loads the document, returning nil when the file is missing or the
// document itself is unparseable. Corruption is treated as absence.
func (s *FileStore) read() *credentialsDoc {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var doc credentialsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return &doc
}

func (s *FileStore) readUser() (*domain.User, error) {
	doc := s.read()
	if doc == nil || len(doc.User) == 0 {
		return nil, domain.ErrNoUser
	}
	var user domain.User
	if err := json.Unmarshal(doc.User, &user); err != nil {
		// Malformed persisted profile: absent, not an error.
		return nil, domain.ErrNoUser
	}
	return &user, nil
}

func (s *FileStore) write(doc *credentialsDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
