package sources

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/pkg/cache"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

func newTestFetcher(t *testing.T, ttl time.Duration) *Fetcher {
	t.Helper()
	return NewFetcher("test_source", cache.NewMemoryStore(), ttl, logger.Nop())
}

func TestFetchCachesFirstCall(t *testing.T) {
	f := newTestFetcher(t, time.Hour)
	ctx := context.Background()

	var calls int32
	call := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "payload", nil
	}

	got, status := Fetch(ctx, f, "k", false, call)
	require.Equal(t, contracts.StatusOK, status.Status)
	assert.Equal(t, "payload", got)

	got, status = Fetch(ctx, f, "k", false, call)
	require.Equal(t, contracts.StatusOK, status.Status)
	assert.Equal(t, "payload", got)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second call should be served from cache")
}

func TestFetchRefreshBypassesCache(t *testing.T) {
	f := newTestFetcher(t, time.Hour)
	ctx := context.Background()

	var calls int32
	call := func(ctx context.Context) (string, error) {
		return "v", incr(&calls)
	}

	_, _ = Fetch(ctx, f, "k", false, call)
	_, _ = Fetch(ctx, f, "k", true, call)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func incr(n *int32) error {
	atomic.AddInt32(n, 1)
	return nil
}

func TestFetchServesStaleOnFailure(t *testing.T) {
	// Zero TTL makes every entry expire immediately.
	f := newTestFetcher(t, time.Nanosecond)
	ctx := context.Background()

	_, status := Fetch(ctx, f, "k", false, func(ctx context.Context) (string, error) {
		return "old", nil
	})
	require.Equal(t, contracts.StatusOK, status.Status)

	time.Sleep(time.Millisecond)

	got, status := Fetch(ctx, f, "k", false, func(ctx context.Context) (string, error) {
		return "", errors.New("provider down")
	})
	assert.Equal(t, contracts.StatusWarning, status.Status)
	assert.Contains(t, status.Message, "stale")
	assert.Contains(t, status.Message, "provider down")
	assert.Equal(t, "old", got)
}

func TestFetchErrorWithNothingCached(t *testing.T) {
	f := newTestFetcher(t, time.Hour)

	got, status := Fetch(context.Background(), f, "k", false, func(ctx context.Context) (string, error) {
		return "", errors.New("connection refused")
	})
	assert.Equal(t, contracts.StatusError, status.Status)
	assert.Equal(t, "connection refused", status.Message)
	assert.Empty(t, got)
}

func TestFetchDeduplicatesConcurrentCalls(t *testing.T) {
	f := newTestFetcher(t, time.Hour)
	ctx := context.Background()

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	call := func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return 42, nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// refresh=true so everyone skips the cache and contends on
			// the same in-flight call.
			v, status := Fetch(ctx, f, "k", true, call)
			require.Equal(t, contracts.StatusOK, status.Status)
			results[i] = v
		}(i)
	}

	<-started
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "concurrent fetches should share one call")
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}
