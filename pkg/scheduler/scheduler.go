// Package scheduler drives the periodic refresh cycles that keep the
// snapshot cache warm.
package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jonboulle/clockwork"

	"github.com/Chip777-coder/mirrorx-backend/pkg/cache"
	"github.com/Chip777-coder/mirrorx-backend/pkg/fetch"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/metrics"
	"github.com/Chip777-coder/mirrorx-backend/pkg/normalize"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

// PublishFunc is invoked after every successful cache write, once per
// refreshed dataset. Used to push snapshot updates to streaming clients.
type PublishFunc func(dataset string, record cache.Record)

// Spec describes one refresh schedule: a set of adapters fanned out on a
// fixed interval, normalized per dataset and written to the store.
type Spec struct {
	Name        string
	Interval    time.Duration
	Adapters    []sources.Adapter
	Normalizers map[string]normalize.Func
	TTLFor      func(dataset string) time.Duration
	Store       cache.Store
	Fetcher     *fetch.Fetcher
	Clock       clockwork.Clock
	Publish     PublishFunc
	Logger      *logging.Logger
}

// Schedule runs refresh cycles for one Spec. Cycles never overlap: a tick
// that fires while the previous cycle is still running is skipped.
type Schedule struct {
	name        string
	interval    time.Duration
	adapters    []sources.Adapter
	normalizers map[string]normalize.Func
	ttlFor      func(string) time.Duration
	store       cache.Store
	fetcher     *fetch.Fetcher
	clock       clockwork.Clock
	publish     PublishFunc
	logger      *logging.Logger

	running atomic.Bool
}

// New builds a Schedule from a Spec.
func New(spec Spec) (*Schedule, error) {
	if len(spec.Adapters) == 0 {
		return nil, ErrNoAdapters
	}
	if len(spec.Normalizers) == 0 {
		return nil, ErrNoNormalizers
	}
	if spec.Clock == nil {
		spec.Clock = clockwork.NewRealClock()
	}
	if spec.Logger == nil {
		spec.Logger = logging.Nop()
	}
	return &Schedule{
		name:        spec.Name,
		interval:    spec.Interval,
		adapters:    spec.Adapters,
		normalizers: spec.Normalizers,
		ttlFor:      spec.TTLFor,
		store:       spec.Store,
		fetcher:     spec.Fetcher,
		clock:       spec.Clock,
		publish:     spec.Publish,
		logger:      spec.Logger.With("schedule", spec.Name),
	}, nil
}

// Run executes a warmup cycle immediately, then refreshes on every interval
// tick until ctx is cancelled. It blocks; callers run it in a goroutine.
func (s *Schedule) Run(ctx context.Context) {
	s.logger.Info("schedule started",
		"interval", s.interval.String(),
		"adapters", len(s.adapters))

	if err := s.RunCycle(ctx); err != nil {
		s.logger.Warn("warmup cycle degraded", "error", err.Error())
	}

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("schedule stopped")
			return
		case <-ticker.Chan():
			go func() {
				err := s.RunCycle(ctx)
				switch {
				case err == nil:
				case errors.Is(err, ErrCycleInFlight):
					s.logger.Warn("tick skipped, previous cycle still running")
					metrics.RecordCycleSkip(s.name)
				default:
					s.logger.Warn("refresh cycle degraded", "error", err.Error())
				}
			}()
		}
	}
}

// RunCycle performs one full refresh cycle: fan out to every adapter, group
// successful payloads per dataset, normalize and write each dataset. A
// dataset whose refresh fails keeps its previous cache entry; the returned
// error aggregates all per-dataset failures and never aborts the cycle.
func (s *Schedule) RunCycle(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrCycleInFlight
	}
	defer s.running.Store(false)

	start := s.clock.Now()
	results := s.fetcher.FetchAll(ctx, s.adapters)

	inputs := make(map[string]map[string]sources.RawPayload)
	for _, res := range results {
		if !res.OK() {
			continue
		}
		if inputs[res.Dataset] == nil {
			inputs[res.Dataset] = make(map[string]sources.RawPayload)
		}
		inputs[res.Dataset][res.Adapter] = res.Payload
	}

	var cycleErr *multierror.Error
	for _, dataset := range s.datasets() {
		if err := s.refreshDataset(ctx, dataset, inputs[dataset]); err != nil {
			cycleErr = multierror.Append(cycleErr, err)
		}
	}

	status := "ok"
	if cycleErr.ErrorOrNil() != nil {
		status = "degraded"
	}
	elapsed := s.clock.Since(start)
	metrics.RecordCycle(s.name, status, elapsed)
	s.logger.Info("refresh cycle finished",
		"status", status,
		"duration", elapsed.String())

	return cycleErr.ErrorOrNil()
}

// refreshDataset normalizes one dataset's payloads and replaces its cache
// entry. Normalization and write failures are reported, never fatal.
func (s *Schedule) refreshDataset(ctx context.Context, dataset string, payloads map[string]sources.RawPayload) error {
	record, err := s.normalizers[dataset](payloads)
	if err != nil {
		metrics.RecordCacheWrite(dataset, "normalize-failed")
		s.logger.Warn("dataset refresh failed, keeping previous entry",
			"dataset", dataset,
			"error", err.Error())
		return err
	}

	if err := s.store.Set(ctx, dataset, record, s.ttlFor(dataset)); err != nil {
		metrics.RecordCacheWrite(dataset, "write-failed")
		s.logger.Error("cache write failed, keeping previous entry",
			"dataset", dataset,
			"error", err.Error())
		return err
	}

	metrics.RecordCacheWrite(dataset, "ok")
	s.logger.Debug("dataset refreshed", "dataset", dataset, "bytes", len(record))

	if s.publish != nil {
		s.publish(dataset, record)
	}
	return nil
}

// datasets returns the schedule's dataset keys in stable order.
func (s *Schedule) datasets() []string {
	keys := make([]string, 0, len(s.normalizers))
	for dataset := range s.normalizers {
		keys = append(keys, dataset)
	}
	sort.Strings(keys)
	return keys
}
