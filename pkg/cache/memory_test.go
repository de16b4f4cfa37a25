package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	in := samplePayload{Name: "fred", Values: []float64{4.2}}
	require.NoError(t, store.Set(ctx, "fred:series=DGS10", in, time.Hour))

	var out samplePayload
	require.NoError(t, store.Get(ctx, "fred:series=DGS10", &out))
	assert.Equal(t, in, out)
}

func TestMemoryStoreExpiredIsMissButStaleServes(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	in := samplePayload{Name: "stale"}
	require.NoError(t, store.Set(ctx, "k", in, time.Hour))

	// Backdate the entry past its TTL.
	store.mu.Lock()
	store.entries[hashKey("k")].FetchedAt = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	var out samplePayload
	assert.ErrorIs(t, store.Get(ctx, "k", &out), ErrMiss)

	age, err := store.GetStale(ctx, "k", &out)
	require.NoError(t, err)
	assert.Equal(t, "stale", out.Name)
	assert.Greater(t, age, time.Hour)
}

func TestMemoryStoreClearAndInfo(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", samplePayload{}, time.Hour))
	require.NoError(t, store.Set(ctx, "b", samplePayload{}, time.Hour))

	info, err := store.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, info.TotalEntries)
	assert.Equal(t, 2, info.ValidEntries)

	removed, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	info, err = store.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, info.TotalEntries)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = store.Set(ctx, "shared", samplePayload{Name: "x"}, time.Hour)
				var out samplePayload
				_ = store.Get(ctx, "shared", &out)
			}
		}()
	}
	wg.Wait()

	var out samplePayload
	require.NoError(t, store.Get(ctx, "shared", &out))
	assert.Equal(t, "x", out.Name)
}
