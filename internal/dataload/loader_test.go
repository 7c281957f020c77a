package dataload_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinhyuklee/leadstock/internal/dataload"
	"github.com/jinhyuklee/leadstock/internal/domain"
	"github.com/jinhyuklee/leadstock/internal/ports"
)

var (
	loadFrom = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	loadTo   = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
)

func testBars(n int) []domain.Bar {
	bars := make([]domain.Bar, n)
	for i := range bars {
		bars[i] = domain.Bar{
			Date:   loadFrom.AddDate(0, 0, i),
			Open:   100,
			High:   101,
			Low:    99,
			Close:  100,
			Volume: 1000,
		}
	}
	return bars
}

type mockStore struct {
	mu       sync.Mutex
	bars     map[string][]domain.Bar
	coverage map[string]ports.Coverage
	saved    []string
}

func newMockStore() *mockStore {
	return &mockStore{
		bars:     make(map[string][]domain.Bar),
		coverage: make(map[string]ports.Coverage),
	}
}

func (m *mockStore) put(ticker string, bars []domain.Bar, cov ports.Coverage) {
	m.bars[ticker] = bars
	m.coverage[ticker] = cov
}

func (m *mockStore) LoadBars(_ context.Context, tickers []string, _, _ time.Time) (map[string][]domain.Bar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]domain.Bar)
	for _, t := range tickers {
		if bars, ok := m.bars[t]; ok {
			out[t] = bars
		}
	}
	return out, nil
}

func (m *mockStore) SaveBars(_ context.Context, ticker string, bars []domain.Bar, from, to time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bars[ticker] = bars
	m.coverage[ticker] = ports.Coverage{FirstDate: from, LastDate: to, SchemaVersion: ports.BarSchemaVersion}
	m.saved = append(m.saved, ticker)
	return nil
}

func (m *mockStore) BarCoverage(_ context.Context, ticker string) (ports.Coverage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cov, ok := m.coverage[ticker]
	return cov, ok, nil
}

type mockProvider struct {
	mu    sync.Mutex
	bars  map[string][]domain.Bar
	errs  map[string]error
	calls []string
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		bars: make(map[string][]domain.Bar),
		errs: make(map[string]error),
	}
}

func (m *mockProvider) FetchDailyBars(_ context.Context, ticker string, _, _ time.Time) ([]domain.Bar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, ticker)
	if err := m.errs[ticker]; err != nil {
		return nil, err
	}
	return m.bars[ticker], nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func freshCoverage() ports.Coverage {
	return ports.Coverage{FirstDate: loadFrom, LastDate: loadTo, SchemaVersion: ports.BarSchemaVersion}
}

func TestPreloadCacheHit(t *testing.T) {
	store := newMockStore()
	store.put("AAA", testBars(30), freshCoverage())
	provider := newMockProvider()

	loader := dataload.New(store, provider, dataload.Config{Workers: 2})
	data, failed, err := loader.Preload(context.Background(), []string{"AAA"}, loadFrom, loadTo)

	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Len(t, data["AAA"], 30)
	// Fully covered: the provider is never touched.
	assert.Equal(t, 0, provider.callCount())
}

func TestPreloadStaleCoverageRefetches(t *testing.T) {
	store := newMockStore()
	// Cached range ends well before the requested end, beyond the slack.
	stale := freshCoverage()
	stale.LastDate = loadTo.AddDate(0, 0, -30)
	store.put("AAA", testBars(30), stale)

	provider := newMockProvider()
	provider.bars["AAA"] = testBars(300)

	loader := dataload.New(store, provider, dataload.Config{Workers: 2})
	data, failed, err := loader.Preload(context.Background(), []string{"AAA"}, loadFrom, loadTo)

	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Len(t, data["AAA"], 300)
	assert.Equal(t, 1, provider.callCount())
	// The refreshed range lands back in the cache.
	assert.Contains(t, store.saved, "AAA")
}

func TestPreloadSchemaBumpInvalidates(t *testing.T) {
	store := newMockStore()
	old := freshCoverage()
	old.SchemaVersion = ports.BarSchemaVersion - 1
	store.put("AAA", testBars(30), old)

	provider := newMockProvider()
	provider.bars["AAA"] = testBars(300)

	loader := dataload.New(store, provider, dataload.Config{Workers: 2})
	_, _, err := loader.Preload(context.Background(), []string{"AAA"}, loadFrom, loadTo)

	require.NoError(t, err)
	assert.Equal(t, 1, provider.callCount())
}

func TestPreloadCoverageSlack(t *testing.T) {
	store := newMockStore()
	// Starts 3 days late, ends 2 days early: inside the slack windows,
	// still a cache hit.
	cov := freshCoverage()
	cov.FirstDate = loadFrom.AddDate(0, 0, 3)
	cov.LastDate = loadTo.AddDate(0, 0, -2)
	store.put("AAA", testBars(30), cov)

	provider := newMockProvider()
	loader := dataload.New(store, provider, dataload.Config{Workers: 2})
	data, _, err := loader.Preload(context.Background(), []string{"AAA"}, loadFrom, loadTo)

	require.NoError(t, err)
	assert.Len(t, data["AAA"], 30)
	assert.Equal(t, 0, provider.callCount())
}

func TestPreloadPartialFailure(t *testing.T) {
	store := newMockStore()
	provider := newMockProvider()
	provider.bars["AAA"] = testBars(300)
	provider.errs["BBB"] = errors.New("upstream 500")
	// CCC returns no bars at all: also a drop.

	loader := dataload.New(store, provider, dataload.Config{Workers: 4})
	data, failed, err := loader.Preload(context.Background(), []string{"AAA", "BBB", "CCC"}, loadFrom, loadTo)

	require.NoError(t, err)
	assert.Len(t, data, 1)
	assert.Len(t, data["AAA"], 300)
	assert.Equal(t, []string{"BBB", "CCC"}, failed)
}

func TestPreloadNilStoreFetchesEverything(t *testing.T) {
	provider := newMockProvider()
	provider.bars["AAA"] = testBars(10)
	provider.bars["BBB"] = testBars(10)

	loader := dataload.New(nil, provider, dataload.Config{Workers: 2})
	data, failed, err := loader.Preload(context.Background(), []string{"AAA", "BBB"}, loadFrom, loadTo)

	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Len(t, data, 2)
	assert.Equal(t, 2, provider.callCount())
}
