// Package snapshot provides read access to the cached dataset records.
// Reads never touch an upstream source.
package snapshot

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Chip777-coder/mirrorx-backend/pkg/cache"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/metrics"
)

// DatasetSnapshot is the read-side view of one dataset. A dataset that has
// never been refreshed carries a null record and no update time. Stale
// entries are served as-is with the flag set.
type DatasetSnapshot struct {
	Record  cache.Record `json:"record"`
	Updated *time.Time   `json:"updated"`
	Stale   bool         `json:"stale"`
}

// Populated reports whether the dataset has ever been refreshed.
func (s DatasetSnapshot) Populated() bool {
	return s.Record != nil
}

// Reader merges cached entries for a set of dataset keys into one snapshot
// view. Backend errors degrade the affected key to never-populated instead
// of failing the read.
type Reader struct {
	store  cache.Store
	clock  clockwork.Clock
	logger *logging.Logger
}

// NewReader creates a Reader over a cache store.
func NewReader(store cache.Store, clock clockwork.Clock, logger *logging.Logger) *Reader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reader{store: store, clock: clock, logger: logger}
}

// Read returns the snapshot for every requested key. Each key reflects its
// own last refresh; keys refreshed at different times keep their own
// timestamps in the merged view.
func (r *Reader) Read(ctx context.Context, keys []string) map[string]DatasetSnapshot {
	now := r.clock.Now()
	out := make(map[string]DatasetSnapshot, len(keys))

	for _, key := range keys {
		entry, found, err := r.store.Get(ctx, key)
		if err != nil {
			r.logger.Error("cache read failed, serving dataset as unpopulated",
				"dataset", key,
				"error", err.Error())
			out[key] = DatasetSnapshot{}
			continue
		}
		if !found {
			out[key] = DatasetSnapshot{}
			continue
		}

		updated := entry.FetchedAt
		metrics.RecordStaleness(key, entry.Age(now))
		out[key] = DatasetSnapshot{
			Record:  entry.Record,
			Updated: &updated,
			Stale:   entry.Stale(now),
		}
	}

	return out
}
