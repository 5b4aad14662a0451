package recommend

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockProvider struct {
	mu    sync.Mutex
	calls int32
	items []Item
	err   error
	delay time.Duration
}

func (m *mockProvider) Recommend(_ context.Context, _ string) ([]Item, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string][]Item
	getErr  error
	setErr  error
}

func newCache() *mockCache {
	return &mockCache{entries: make(map[string][]Item)}
}

func (m *mockCache) Get(_ context.Context, userID string) ([]Item, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	items, ok := m.entries[userID]
	return items, ok, nil
}

func (m *mockCache) Set(_ context.Context, userID string, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[userID] = items
	return nil
}

// --- Helpers ---

func testItems() []Item {
	return []Item{{Name: "Wool Scarf", Price: decimal.RequireFromString("24.99")}}
}

// --- Tests ---

func TestFor_CacheHitSkipsProvider(t *testing.T) {
	provider := &mockProvider{items: testItems()}
	cache := newCache()
	cache.entries["u1"] = testItems()
	svc := NewService(provider, cache)

	items := svc.For(context.Background(), "u1")
	require.Len(t, items, 1)
	assert.Equal(t, "Wool Scarf", items[0].Name)
	assert.EqualValues(t, 0, atomic.LoadInt32(&provider.calls))
}

func TestFor_MissCallsProviderAndCaches(t *testing.T) {
	provider := &mockProvider{items: testItems()}
	cache := newCache()
	svc := NewService(provider, cache)

	items := svc.For(context.Background(), "u1")
	require.Len(t, items, 1)
	assert.EqualValues(t, 1, atomic.LoadInt32(&provider.calls))

	// Second call is served from the cache.
	svc.For(context.Background(), "u1")
	assert.EqualValues(t, 1, atomic.LoadInt32(&provider.calls))
}

func TestFor_ProviderFailureServesDefaults(t *testing.T) {
	provider := &mockProvider{err: errors.New("upstream unavailable")}
	svc := NewService(provider, newCache())

	items := svc.For(context.Background(), "u1")
	require.Len(t, items, 5)
	assert.Equal(t, "Classic White Sneakers", items[0].Name)
	assert.True(t, decimal.RequireFromString("79.99").Equal(items[0].Price))
}

func TestFor_EmptyProviderResultServesDefaults(t *testing.T) {
	provider := &mockProvider{}
	cache := newCache()
	svc := NewService(provider, cache)

	items := svc.For(context.Background(), "u1")
	require.Len(t, items, 5)

	// The empty result is not cached.
	_, ok, err := cache.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFor_CacheErrorsAreAbsorbed(t *testing.T) {
	provider := &mockProvider{items: testItems()}
	cache := newCache()
	cache.getErr = errors.New("cache down")
	cache.setErr = errors.New("cache down")
	svc := NewService(provider, cache)

	items := svc.For(context.Background(), "u1")
	require.Len(t, items, 1)
	assert.Equal(t, "Wool Scarf", items[0].Name)
}

func TestFor_ConcurrentMissesCollapse(t *testing.T) {
	provider := &mockProvider{items: testItems(), delay: 20 * time.Millisecond}
	svc := NewService(provider, newCache())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items := svc.For(context.Background(), "u1")
			assert.Len(t, items, 1)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&provider.calls),
		"concurrent misses for one user share a single provider call")
}
