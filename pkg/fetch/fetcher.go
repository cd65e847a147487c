// Package fetch implements the concurrent fan-out across source adapters
// for one refresh cycle.
package fetch

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"
	"golang.org/x/sync/semaphore"

	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/metrics"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

const (
	defaultAdapterTimeout = 10 * time.Second
	defaultCycleDeadline  = 30 * time.Second
	defaultMaxConcurrent  = 8
)

// Options configures a Fetcher.
type Options struct {
	// AdapterTimeout bounds each individual adapter call.
	AdapterTimeout time.Duration
	// CycleDeadline bounds the wall-clock time of one whole cycle.
	CycleDeadline time.Duration
	// MaxConcurrent bounds the number of adapter calls in flight at once.
	MaxConcurrent int
}

// Fetcher invokes a set of adapters concurrently for one refresh cycle and
// collects a Result per adapter. One slow or failing adapter never blocks or
// fails the others, and the cycle never outlives its deadline.
type Fetcher struct {
	adapterTimeout time.Duration
	cycleDeadline  time.Duration
	maxConcurrent  int64
	logger         *logging.Logger
}

// New creates a Fetcher. Zero option values fall back to defaults.
func New(opts Options, logger *logging.Logger) *Fetcher {
	if opts.AdapterTimeout <= 0 {
		opts.AdapterTimeout = defaultAdapterTimeout
	}
	if opts.CycleDeadline <= 0 {
		opts.CycleDeadline = defaultCycleDeadline
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	return &Fetcher{
		adapterTimeout: opts.AdapterTimeout,
		cycleDeadline:  opts.CycleDeadline,
		maxConcurrent:  int64(opts.MaxConcurrent),
		logger:         logger,
	}
}

// FetchAll runs one fan-out cycle and returns a Result per adapter, keyed by
// adapter name. Adapters still pending when the cycle deadline passes are
// recorded as timeout failures and abandoned; their eventual results land in
// a buffered channel that is never read again.
func (f *Fetcher) FetchAll(ctx context.Context, adapters []sources.Adapter) map[string]Result {
	cycleCtx, cancel := context.WithTimeout(ctx, f.cycleDeadline)
	defer cancel()

	results := make(chan Result, len(adapters))
	sem := semaphore.NewWeighted(f.maxConcurrent)

	var wg conc.WaitGroup
	for _, adapter := range adapters {
		adapter := adapter
		wg.Go(func() {
			results <- f.fetchOne(cycleCtx, sem, adapter)
		})
	}
	go func() {
		if r := wg.WaitAndRecover(); r != nil {
			f.logger.Error("adapter goroutine panicked", "panic", r.Value)
		}
	}()

	collected := make(map[string]Result, len(adapters))
	pending := len(adapters)
	for pending > 0 {
		select {
		case res := <-results:
			collected[res.Adapter] = res
			pending--
		case <-cycleCtx.Done():
			pending = 0
		}
	}

	for _, adapter := range adapters {
		if _, ok := collected[adapter.Name()]; ok {
			continue
		}
		f.logger.Warn("adapter abandoned at cycle deadline", "adapter", adapter.Name())
		collected[adapter.Name()] = Result{
			Adapter: adapter.Name(),
			Dataset: adapter.Dataset(),
			Err: sources.NewFetchError(sources.FetchKindTimeout, adapter.Name(),
				"abandoned at cycle deadline", cycleCtx.Err()),
		}
	}

	return collected
}

// fetchOne runs a single adapter call under the concurrency semaphore and
// its own timeout.
func (f *Fetcher) fetchOne(cycleCtx context.Context, sem *semaphore.Weighted, adapter sources.Adapter) Result {
	result := Result{Adapter: adapter.Name(), Dataset: adapter.Dataset()}

	if err := sem.Acquire(cycleCtx, 1); err != nil {
		result.Err = sources.NewFetchError(sources.FetchKindTimeout, adapter.Name(),
			"cycle deadline reached before fetch started", err)
		return result
	}
	defer sem.Release(1)

	fetchCtx, cancel := context.WithTimeout(cycleCtx, f.adapterTimeout)
	defer cancel()

	start := time.Now()
	payload, err := adapter.Fetch(fetchCtx)
	duration := time.Since(start)

	if err != nil {
		fe := sources.ClassifyFetchError(adapter.Name(), err)
		metrics.RecordAdapterFetch(adapter.Name(), string(fe.Kind), duration)
		f.logger.Warn("adapter fetch failed",
			"adapter", adapter.Name(),
			"kind", string(fe.Kind),
			"error", fe.Error())
		result.Err = fe
		return result
	}

	metrics.RecordAdapterFetch(adapter.Name(), "success", duration)
	result.Payload = payload
	return result
}
