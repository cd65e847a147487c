package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chip777-coder/mirrorx-backend/pkg/cache"
	"github.com/Chip777-coder/mirrorx-backend/pkg/fetch"
	"github.com/Chip777-coder/mirrorx-backend/pkg/logging"
	"github.com/Chip777-coder/mirrorx-backend/pkg/normalize"
	"github.com/Chip777-coder/mirrorx-backend/pkg/sources"
)

// stubAdapter is a scriptable in-memory adapter.
type stubAdapter struct {
	name    string
	dataset string
	payload sources.RawPayload
	err     error
	block   chan struct{}
	entered chan struct{} // closed once Fetch has started
	once    sync.Once
}

func (s *stubAdapter) Name() string              { return s.name }
func (s *stubAdapter) Type() sources.AdapterType { return sources.AdapterTypeMarket }
func (s *stubAdapter) Dataset() string           { return s.dataset }

func (s *stubAdapter) Fetch(ctx context.Context) (sources.RawPayload, error) {
	if s.entered != nil {
		s.once.Do(func() { close(s.entered) })
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

// passthroughNormalizer returns the single input payload unchanged, or fails
// when no contributor delivered one.
func passthroughNormalizer(dataset string) normalize.Func {
	return func(inputs map[string]sources.RawPayload) (cache.Record, error) {
		for _, payload := range inputs {
			return cache.Record(payload), nil
		}
		return nil, errors.New("no payloads for " + dataset)
	}
}

func newTestSchedule(t *testing.T, store cache.Store, adapters []sources.Adapter, normalizers map[string]normalize.Func, publish PublishFunc) *Schedule {
	t.Helper()
	sched, err := New(Spec{
		Name:        "test",
		Interval:    time.Minute,
		Adapters:    adapters,
		Normalizers: normalizers,
		TTLFor:      func(string) time.Duration { return 10 * time.Minute },
		Store:       store,
		Fetcher:     fetch.New(fetch.Options{CycleDeadline: time.Second}, logging.Nop()),
		Publish:     publish,
		Logger:      logging.Nop(),
	})
	require.NoError(t, err)
	return sched
}

func TestRunCycle_WritesEveryDataset(t *testing.T) {
	store := cache.NewMemoryStore(nil)
	sched := newTestSchedule(t, store,
		[]sources.Adapter{
			&stubAdapter{name: "a", dataset: "d1", payload: sources.RawPayload(`{"d":1}`)},
			&stubAdapter{name: "b", dataset: "d2", payload: sources.RawPayload(`{"d":2}`)},
		},
		map[string]normalize.Func{
			"d1": passthroughNormalizer("d1"),
			"d2": passthroughNormalizer("d2"),
		}, nil)

	require.NoError(t, sched.RunCycle(context.Background()))

	for _, key := range []string{"d1", "d2"} {
		entry, found, err := store.Get(context.Background(), key)
		require.NoError(t, err)
		require.True(t, found, key)
		assert.Equal(t, 10*time.Minute, entry.TTL)
	}
}

func TestRunCycle_FailedDatasetKeepsPreviousEntry(t *testing.T) {
	store := cache.NewMemoryStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "d1", cache.Record(`{"old":true}`), 10*time.Minute))

	sched := newTestSchedule(t, store,
		[]sources.Adapter{
			&stubAdapter{name: "a", dataset: "d1", err: errors.New("upstream down")},
		},
		map[string]normalize.Func{"d1": passthroughNormalizer("d1")}, nil)

	err := sched.RunCycle(ctx)
	require.Error(t, err)

	entry, found, getErr := store.Get(ctx, "d1")
	require.NoError(t, getErr)
	require.True(t, found)
	assert.JSONEq(t, `{"old":true}`, string(entry.Record))
}

func TestRunCycle_DatasetFailuresAreIsolated(t *testing.T) {
	store := cache.NewMemoryStore(nil)
	sched := newTestSchedule(t, store,
		[]sources.Adapter{
			&stubAdapter{name: "a", dataset: "d1", err: errors.New("upstream down")},
			&stubAdapter{name: "b", dataset: "d2", payload: sources.RawPayload(`{"ok":true}`)},
		},
		map[string]normalize.Func{
			"d1": passthroughNormalizer("d1"),
			"d2": passthroughNormalizer("d2"),
		}, nil)

	err := sched.RunCycle(context.Background())
	require.Error(t, err, "cycle reports the d1 failure")

	_, found, getErr := store.Get(context.Background(), "d1")
	require.NoError(t, getErr)
	assert.False(t, found, "d1 never succeeded, stays unpopulated")

	entry, found, getErr := store.Get(context.Background(), "d2")
	require.NoError(t, getErr)
	require.True(t, found, "d2 refreshes despite the d1 failure")
	assert.JSONEq(t, `{"ok":true}`, string(entry.Record))
}

func TestRunCycle_SkipsWhenInFlight(t *testing.T) {
	store := cache.NewMemoryStore(nil)
	block := make(chan struct{})
	entered := make(chan struct{})

	sched := newTestSchedule(t, store,
		[]sources.Adapter{
			&stubAdapter{name: "a", dataset: "d1", payload: sources.RawPayload(`{}`), block: block, entered: entered},
		},
		map[string]normalize.Func{"d1": passthroughNormalizer("d1")}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = sched.RunCycle(context.Background())
	}()

	// The running flag is taken before the fan-out starts, so once the
	// adapter is inside Fetch the cycle is observably in flight
	<-entered
	assert.ErrorIs(t, sched.RunCycle(context.Background()), ErrCycleInFlight)

	close(block)
	wg.Wait()

	// With the first cycle finished a new one may run again
	require.NoError(t, sched.RunCycle(context.Background()))
}

func TestRunCycle_PublishesRefreshedDatasets(t *testing.T) {
	store := cache.NewMemoryStore(nil)

	var mu sync.Mutex
	published := make(map[string]string)
	publish := func(dataset string, record cache.Record) {
		mu.Lock()
		defer mu.Unlock()
		published[dataset] = string(record)
	}

	sched := newTestSchedule(t, store,
		[]sources.Adapter{
			&stubAdapter{name: "a", dataset: "d1", payload: sources.RawPayload(`{"v":1}`)},
			&stubAdapter{name: "b", dataset: "d2", err: errors.New("down")},
		},
		map[string]normalize.Func{
			"d1": passthroughNormalizer("d1"),
			"d2": passthroughNormalizer("d2"),
		}, publish)

	_ = sched.RunCycle(context.Background())

	mu.Lock()
	defer mu.Unlock()
	assert.JSONEq(t, `{"v":1}`, published["d1"])
	_, ok := published["d2"]
	assert.False(t, ok, "failed dataset must not be published")
}

func TestRunCycle_CompositeDatasetPartial(t *testing.T) {
	store := cache.NewMemoryStore(nil)
	contributors := []string{"coingecko", "dexscreener", "cryptocompare"}

	marketNorm, err := normalize.ForDataset(normalize.DatasetCryptoMarket, contributors)
	require.NoError(t, err)

	payload := sources.RawPayload(`[{"symbol":"sol","current_price":10.0}]`)
	sched := newTestSchedule(t, store,
		[]sources.Adapter{
			&stubAdapter{name: "coingecko", dataset: normalize.DatasetCryptoMarket, payload: payload},
			&stubAdapter{name: "dexscreener", dataset: normalize.DatasetCryptoMarket, err: errors.New("down")},
			&stubAdapter{name: "cryptocompare", dataset: normalize.DatasetCryptoMarket, err: errors.New("down")},
		},
		map[string]normalize.Func{normalize.DatasetCryptoMarket: marketNorm}, nil)

	require.NoError(t, sched.RunCycle(context.Background()))

	entry, found, err := store.Get(context.Background(), normalize.DatasetCryptoMarket)
	require.NoError(t, err)
	require.True(t, found)

	var record struct {
		Partial   bool     `json:"partial"`
		Providers []string `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(entry.Record, &record))
	assert.True(t, record.Partial)
	assert.Equal(t, []string{"coingecko"}, record.Providers)
}

func TestNew_RequiresAdaptersAndNormalizers(t *testing.T) {
	_, err := New(Spec{Normalizers: map[string]normalize.Func{"d": passthroughNormalizer("d")}})
	assert.ErrorIs(t, err, ErrNoAdapters)

	_, err = New(Spec{Adapters: []sources.Adapter{&stubAdapter{name: "a", dataset: "d"}}})
	assert.ErrorIs(t, err, ErrNoNormalizers)
}
