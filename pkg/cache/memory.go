package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// MemoryStore is an in-process snapshot store. Entries are replaced whole
// under the write lock, so readers never observe a partially updated record.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	clock   clockwork.Clock
}

// NewMemoryStore creates an in-memory store. A nil clock uses the real clock.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		entries: make(map[string]Entry),
		clock:   clock,
	}
}

// Set overwrites the entry for key.
func (s *MemoryStore) Set(_ context.Context, key string, record Record, ttl time.Duration) error {
	// Own the bytes so later mutations by the caller cannot leak in
	stored := make(Record, len(record))
	copy(stored, record)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = Entry{
		Key:       key,
		Record:    stored,
		FetchedAt: s.clock.Now(),
		TTL:       ttl,
	}
	return nil
}

// Get returns the current entry for key, if one exists.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return &entry, true, nil
}
