// Package sources implements the shared fetch pipeline for external data
// providers: cache lookup, deduplicated live fetch, and stale fallback.
package sources

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wrenlab/sectorscope/internal/contracts"
	"github.com/wrenlab/sectorscope/pkg/cache"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// Fetcher resolves provider data through the degradation ladder:
// valid cache entry, live call (deduplicated per key), then stale cache.
// Providers never return transport errors to callers; failures surface as
// absent data plus a degraded SourceStatus.
type Fetcher struct {
	name  string
	store cache.Store
	ttl   time.Duration
	log   *logger.Logger
	group singleflight.Group
}

// NewFetcher creates a Fetcher for one named source.
func NewFetcher(name string, store cache.Store, ttl time.Duration, log *logger.Logger) *Fetcher {
	return &Fetcher{
		name:  name,
		store: store,
		ttl:   ttl,
		log:   log.WithField("source", name),
	}
}

// Name returns the source name used in statuses and cache keys.
func (f *Fetcher) Name() string {
	return f.name
}

// TTL returns the cache lifetime applied to fetched entries.
func (f *Fetcher) TTL() time.Duration {
	return f.ttl
}

// Fetch resolves one cache key. With refresh false a valid cache entry is
// served directly. Otherwise call runs at most once per key across
// concurrent callers; its result is cached before being returned. When the
// call fails, an expired cache entry is served with a warning status; with
// nothing cached the zero value is returned with an error status.
func Fetch[T any](ctx context.Context, f *Fetcher, key string, refresh bool, call func(context.Context) (T, error)) (T, contracts.SourceStatus) {
	var zero T

	if !refresh {
		var cached T
		if err := f.store.Get(ctx, key, &cached); err == nil {
			return cached, OK(f.name)
		}
	}

	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		fresh, err := call(ctx)
		if err != nil {
			return nil, err
		}
		// The entry is written even if the caller has gone away: the data
		// is already in hand and the next request should not refetch it.
		if setErr := f.store.Set(context.WithoutCancel(ctx), key, fresh, f.ttl); setErr != nil {
			f.log.WithError(setErr).WithField("key", key).Warn("cache write failed")
		}
		return fresh, nil
	})
	if err == nil {
		return v.(T), OK(f.name)
	}

	f.log.WithError(err).WithField("key", key).Warn("fetch failed, falling back to stale cache")

	var stale T
	if age, staleErr := f.store.GetStale(ctx, key, &stale); staleErr == nil {
		return stale, Warning(f.name, fmt.Sprintf("serving stale data (%s old): %v", age.Round(time.Minute), err))
	}

	return zero, Error(f.name, err.Error())
}

// OK builds a healthy status for a source.
func OK(name string) contracts.SourceStatus {
	return contracts.SourceStatus{Source: name, Status: contracts.StatusOK}
}

// Warning builds a degraded-but-usable status.
func Warning(name, message string) contracts.SourceStatus {
	return contracts.SourceStatus{Source: name, Status: contracts.StatusWarning, Message: message}
}

// Error builds a failed status.
func Error(name, message string) contracts.SourceStatus {
	return contracts.SourceStatus{Source: name, Status: contracts.StatusError, Message: message}
}
