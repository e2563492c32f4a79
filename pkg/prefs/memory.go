package prefs

import (
	"context"
	"sync"
)

// MemoryStore keeps a record in memory.
type MemoryStore struct {
	mu  sync.RWMutex
	rec Record
	err error
}

// NewMemoryStore returns a store holding rec.
func NewMemoryStore(rec Record) *MemoryStore {
	return &MemoryStore{rec: rec}
}

// Fail makes every later call return err wrapped in ErrUnavailable. Nil
// clears it.
func (s *MemoryStore) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *MemoryStore) Get(_ context.Context) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return Record{}, unavailable(s.err)
	}
	return s.rec, nil
}

func (s *MemoryStore) Put(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return unavailable(s.err)
	}
	s.rec = s.rec.Merge(r)
	return nil
}

var _ Store = (*MemoryStore)(nil)
