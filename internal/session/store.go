package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wagate/backend/internal/provider"
)

// Store persists the session credential blob across restarts. One file,
// one blob: Save overwrites, never merges.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted credentials. A missing file is not an error;
// it returns (nil, nil), meaning pairing must start from scratch.
func (s *Store) Load() (*provider.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("session file %s is not valid JSON", s.path)
	}
	return &provider.Credentials{Raw: json.RawMessage(data)}, nil
}

// Save writes the credentials using a temp-file-then-rename so a crash
// mid-write never leaves a truncated session file behind.
func (s *Store) Save(creds *provider.Credentials) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(creds.Raw); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("renaming session file: %w", err)
	}
	committed = true

	return nil
}

// Clear removes the persisted credentials. A file that is already gone is
// not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
