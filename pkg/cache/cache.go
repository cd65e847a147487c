// Package cache provides the TTL-bounded snapshot store keyed by dataset.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Record is one normalized snapshot encoded as JSON. Keeping the record as
// encoded bytes makes entry replacement atomic and guarantees the field set
// round-trips identically through every backend.
type Record = json.RawMessage

// Entry is the cached snapshot for one dataset key.
type Entry struct {
	Key       string        `json:"key"`
	Record    Record        `json:"record"`
	FetchedAt time.Time     `json:"fetched_at"`
	TTL       time.Duration `json:"ttl"`
}

// Stale reports whether the entry has outlived its TTL at the given time.
// Staleness is informational only: stale entries are still served.
func (e *Entry) Stale(now time.Time) bool {
	return now.Sub(e.FetchedAt) > e.TTL
}

// Age returns how long ago the entry was fetched.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// Store is the snapshot cache contract. Writes replace the whole entry for a
// key; reads never reach an upstream source. A key that has never seen a
// successful refresh reports found == false.
type Store interface {
	// Set overwrites the entry for key with a fresh fetch timestamp.
	Set(ctx context.Context, key string, record Record, ttl time.Duration) error

	// Get returns the current entry for key, if one exists.
	Get(ctx context.Context, key string) (entry *Entry, found bool, err error)
}
