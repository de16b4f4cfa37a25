package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is the in-memory Store implementation. Used by tests and as a
// lightweight backend for embedded runs. Values are stored as marshaled
// payloads so Get/Set semantics match the file store exactly.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*envelope
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*envelope),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.RLock()
	env, ok := s.entries[hashKey(key)]
	s.mu.RUnlock()

	if !ok || !env.valid(time.Now()) {
		return ErrMiss
	}

	if err := json.Unmarshal(env.Payload, dest); err != nil {
		return ErrMiss
	}

	return nil
}

// GetStale implements Store.
func (s *MemoryStore) GetStale(_ context.Context, key string, dest interface{}) (time.Duration, error) {
	s.mu.RLock()
	env, ok := s.entries[hashKey(key)]
	s.mu.RUnlock()

	if !ok {
		return 0, ErrMiss
	}

	if err := json.Unmarshal(env.Payload, dest); err != nil {
		return 0, ErrMiss
	}

	return env.age(time.Now()), nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	env, err := newEnvelope(value, ttl, time.Now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[hashKey(key)] = env
	s.mu.Unlock()

	return nil
}

// Invalidate implements Store.
func (s *MemoryStore) Invalidate(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, hashKey(key))
	s.mu.Unlock()
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	removed := len(s.entries)
	s.entries = make(map[string]*envelope)
	s.mu.Unlock()
	return removed, nil
}

// Info implements Store.
func (s *MemoryStore) Info(_ context.Context) (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := Info{}
	now := time.Now()

	for _, env := range s.entries {
		info.TotalEntries++
		info.TotalSizeBytes += int64(len(env.Payload))
		if env.valid(now) {
			info.ValidEntries++
		} else {
			info.ExpiredEntries++
		}
	}

	return info, nil
}

var _ Store = (*MemoryStore)(nil)
