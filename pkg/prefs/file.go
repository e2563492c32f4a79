package prefs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// FileStore keeps the record in a TOML file.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

// NewFileStore returns a store backed by path. An empty path means
// ~/.config/jsontable/prefs.toml.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		path = filepath.Join(home, ".config", "jsontable", "prefs.toml")
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// Get reads the file. A missing file is an empty record.
func (s *FileStore) Get(_ context.Context) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

func (s *FileStore) read() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, nil
		}
		return Record{}, unavailable(fmt.Errorf("read prefs file: %w", err))
	}
	var rec Record
	if err := toml.Unmarshal(data, &rec); err != nil {
		return Record{}, unavailable(fmt.Errorf("parse prefs file %s: %w", s.path, err))
	}
	return rec, nil
}

// Put merges r into the stored record and rewrites the file.
func (s *FileStore) Put(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.read()
	if err != nil {
		return err
	}
	data, err := toml.Marshal(cur.Merge(r))
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return unavailable(fmt.Errorf("create prefs dir: %w", err))
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return unavailable(fmt.Errorf("write prefs file: %w", err))
	}
	return nil
}

var _ Store = (*FileStore)(nil)

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
