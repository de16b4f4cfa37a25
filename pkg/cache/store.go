package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrMiss is returned when a key is absent, expired, or unreadable.
	ErrMiss = errors.New("cache: key not found")
)

// Store defines the key/value + TTL cache contract shared by every source
// fetcher. Entries are owned exclusively by the store; fetchers never touch
// the backing storage directly.
type Store interface {
	// Get unmarshals a still-valid entry into dest, or returns ErrMiss.
	// Corrupted entries are treated as misses, never as errors.
	Get(ctx context.Context, key string, dest interface{}) error
	// GetStale unmarshals an entry regardless of TTL and reports its age.
	// Used to serve expired data when a refetch fails.
	GetStale(ctx context.Context, key string, dest interface{}) (time.Duration, error)
	// Set stores a value with the given TTL. The write is atomic from the
	// reader's perspective.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Invalidate removes a single entry.
	Invalidate(ctx context.Context, key string) error
	// Clear removes all entries regardless of validity and returns the
	// number removed.
	Clear(ctx context.Context) (int, error)
	// Info reports entry counts and total size without refetching anything.
	Info(ctx context.Context) (Info, error)
}

// Info summarizes the cache state.
type Info struct {
	TotalEntries   int   `json:"total_entries"`
	ValidEntries   int   `json:"valid_entries"`
	ExpiredEntries int   `json:"expired_entries"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}

// SizeMB returns the total size in megabytes, rounded to 2 decimals.
func (i Info) SizeMB() float64 {
	mb := float64(i.TotalSizeBytes) / (1024 * 1024)
	return float64(int(mb*100+0.5)) / 100
}

// envelope is the serialized form of one cache entry. Fetch time and TTL
// ride along with the payload so validity can be computed by reading
// metadata only.
type envelope struct {
	FetchedAt  time.Time       `json:"fetched_at"`
	TTLSeconds int64           `json:"ttl_seconds"`
	Payload    json.RawMessage `json:"payload"`
}

func (e *envelope) valid(now time.Time) bool {
	return now.Sub(e.FetchedAt) < time.Duration(e.TTLSeconds)*time.Second
}

func (e *envelope) age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

func newEnvelope(value interface{}, ttl time.Duration, now time.Time) (*envelope, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("cache: marshal payload: %w", err)
	}
	return &envelope{
		FetchedAt:  now,
		TTLSeconds: int64(ttl / time.Second),
		Payload:    payload,
	}, nil
}

// Key builds a cache key from a source name and its request parameters.
// Parameters are sorted so equivalent requests map to the same entry.
func Key(source string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := source
	for _, k := range keys {
		s += ":" + k + "=" + params[k]
	}
	return s
}

// hashKey maps a cache key onto a fixed-size identifier safe for filenames
// and store keys.
func hashKey(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}
