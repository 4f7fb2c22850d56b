package oauth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"apsconnect/pkg/logging"
)

// Storage is the durable collaborator behind the TokenStore. Load returns
// (nil, nil) when no record is stored; Delete of an absent record is a
// successful no-op.
type Storage interface {
	Load() (*TokenRecord, error)
	Save(*TokenRecord) error
	Delete() error
}

// TokenStore owns the process-wide current TokenRecord with an explicit
// load/set/clear lifecycle. All read-modify-write operations are serialized
// under a single lock — only one interactive flow runs at a time, so
// coarse-grained locking is sufficient.
type TokenStore struct {
	mu      sync.Mutex
	storage Storage
	current *TokenRecord
	loaded  bool
}

// NewTokenStore creates a token store backed by the given storage
// collaborator.
func NewTokenStore(storage Storage) *TokenStore {
	return &TokenStore{storage: storage}
}

// Current returns the cached record, lazily loading it from storage on
// first access. Returns (nil, nil) when no record is stored.
func (s *TokenStore) Current() (*TokenRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		rec, err := s.storage.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load token: %w", err)
		}
		s.current = rec
		s.loaded = true
	}

	return s.current, nil
}

// Set persists the record and replaces the cached one.
func (s *TokenStore) Set(rec *TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Save(rec); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.current = rec
	s.loaded = true

	// Token values are never logged.
	logging.Info("TokenStore", "token stored, type %s, expires %s, refresh token present: %t",
		rec.TokenType, rec.ExpiresAt.Format(time.RFC3339), rec.RefreshToken != "")
	return nil
}

// Clear removes the record from memory and durable storage. Clearing when
// nothing is stored is a successful no-op, distinct from a genuine storage
// failure.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	s.current = nil
	s.loaded = true

	logging.Info("TokenStore", "token cleared")
	return nil
}

// tokenFileName is the file the FileStorage keeps the record in.
const tokenFileName = "token.json"

// FileStorage persists the token record as a JSON file.
//
// SECURITY: the file is created with 0600 permissions and its directory
// with 0700, and token values are never logged.
type FileStorage struct {
	dir string
}

// NewFileStorage creates a file-backed storage rooted at dir, creating the
// directory if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create token storage directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Load reads the stored record, returning (nil, nil) when no file exists.
func (f *FileStorage) Load() (*TokenRecord, error) {
	data, err := os.ReadFile(f.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var rec TokenRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token file: %w", err)
	}
	return &rec, nil
}

// Save writes the record with owner-only permissions.
func (f *FileStorage) Save(rec *TokenRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(f.path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Delete removes the token file; an absent file is not an error.
func (f *FileStorage) Delete() error {
	err := os.Remove(f.path())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *FileStorage) path() string {
	return filepath.Join(f.dir, tokenFileName)
}

// MemoryStorage is an in-memory Storage for tests and ephemeral use.
type MemoryStorage struct {
	mu  sync.Mutex
	rec *TokenRecord
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns the stored record, or (nil, nil) when empty.
func (m *MemoryStorage) Load() (*TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec, nil
}

// Save replaces the stored record.
func (m *MemoryStorage) Save(rec *TokenRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	return nil
}

// Delete removes the stored record; deleting nothing succeeds.
func (m *MemoryStorage) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = nil
	return nil
}
