// Package casestore is a flat per-case list store: each case name maps to
// one JSON file holding an array, with append, read, and delete-by-index
// operations. Plain CRUD glue, no caching.
package casestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound reports a case file that does not exist.
type ErrNotFound struct {
	Path string
}

func (e *ErrNotFound) Error() string {
	return "File Not Found " + e.Path
}

// Store reads and writes case files under a single directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on the
// first Append if it does not exist.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// path maps a case name to its file, stripping any path components so a
// crafted name cannot escape the store directory.
func (s *Store) path(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	return filepath.Join(s.dir, base+".json")
}

// Read returns the case's entries. Missing files yield ErrNotFound.
func (s *Store) Read(name string) ([]json.RawMessage, error) {
	p := s.path(name)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrNotFound{Path: p}
		}
		return nil, fmt.Errorf("reading case file: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing case file %s: %w", p, err)
	}
	return entries, nil
}

// Append adds one entry to the case, creating the file if needed.
func (s *Store) Append(name string, entry json.RawMessage) error {
	entries, err := s.Read(name)
	if err != nil {
		var nf *ErrNotFound
		if !errors.As(err, &nf) {
			return err
		}
		entries = nil
	}
	return s.write(name, append(entries, entry))
}

// DeleteAt removes the entry at index. Missing files yield ErrNotFound;
// an out-of-range index is an error.
func (s *Store) DeleteAt(name string, index int) error {
	entries, err := s.Read(name)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("index %d out of range for case %q (%d entries)", index, name, len(entries))
	}
	entries = append(entries[:index], entries[index+1:]...)
	return s.write(name, entries)
}

func (s *Store) write(name string, entries []json.RawMessage) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating case dir: %w", err)
	}

	if entries == nil {
		entries = []json.RawMessage{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling case file: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".case-*.tmp")
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

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path(name)); err != nil {
		return fmt.Errorf("renaming case file: %w", err)
	}
	committed = true

	return nil
}
