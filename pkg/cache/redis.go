package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wrenlab/sectorscope/pkg/config"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// hardExpiry caps how long an entry survives in Redis past its logical TTL.
// Logical validity lives in the envelope so GetStale can still serve expired
// entries when a refetch fails.
const hardExpiry = 14 * 24 * time.Hour

// RedisStore is the Redis-backed Store implementation. Entries are JSON
// envelopes under a key prefix; Info scans the prefix and reads envelope
// metadata only.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *logger.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, prefix string, log *logger.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}

	return &RedisStore{client: client, prefix: prefix, logger: log}, nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + hashKey(key)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string, dest interface{}) error {
	env, err := s.read(ctx, key)
	if err != nil {
		return err
	}

	if !env.valid(time.Now()) {
		return ErrMiss
	}

	if err := json.Unmarshal(env.Payload, dest); err != nil {
		return ErrMiss
	}

	return nil
}

// GetStale implements Store.
func (s *RedisStore) GetStale(ctx context.Context, key string, dest interface{}) (time.Duration, error) {
	env, err := s.read(ctx, key)
	if err != nil {
		return 0, err
	}

	if err := json.Unmarshal(env.Payload, dest); err != nil {
		return 0, ErrMiss
	}

	return env.age(time.Now()), nil
}

func (s *RedisStore) read(ctx context.Context, key string) (*envelope, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		// Key not found or unreachable; either way the caller sees a miss.
		return nil, ErrMiss
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Cache entry corrupted, treating as miss")
		return nil, ErrMiss
	}

	return &env, nil
}

// Set implements Store. A Redis SET is atomic, satisfying the
// atomic-publish requirement.
func (s *RedisStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	env, err := newEnvelope(value, ttl, time.Now())
	if err != nil {
		return err
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("cache: marshal entry: %w", err)
	}

	if err := s.client.Set(ctx, s.key(key), data, hardExpiry).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}

	return nil
}

// Invalidate implements Store.
func (s *RedisStore) Invalidate(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("cache: redis del: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("cache: redis clear: %w", err)
	}

	return int(removed), nil
}

// Info implements Store.
func (s *RedisStore) Info(ctx context.Context) (Info, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return Info{}, err
	}

	info := Info{}
	now := time.Now()

	for _, k := range keys {
		data, err := s.client.Get(ctx, k).Bytes()
		if err != nil {
			continue
		}

		info.TotalEntries++
		info.TotalSizeBytes += int64(len(data))

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			info.ExpiredEntries++
			continue
		}

		if env.valid(now) {
			info.ValidEntries++
		} else {
			info.ExpiredEntries++
		}
	}

	return info, nil
}

func (s *RedisStore) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		batch, next, err := s.client.Scan(ctx, cursor, s.prefix+":*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("cache: redis scan: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
