package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wrenlab/sectorscope/pkg/logger"
)

const fileExt = ".json"

// FileStore is the file-backed Store implementation. One JSON file per
// entry, named by the hashed cache key. Writes go to a temp file first and
// are published with an atomic rename, so readers never observe a partially
// written entry.
type FileStore struct {
	dir    string
	logger *logger.Logger
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if necessary.
func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}
	return &FileStore{dir: dir, logger: log}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, hashKey(key)+fileExt)
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, key string, dest interface{}) error {
	env, err := s.read(key)
	if err != nil {
		return err
	}

	if !env.valid(time.Now()) {
		return ErrMiss
	}

	if err := json.Unmarshal(env.Payload, dest); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Cache payload unreadable, treating as miss")
		return ErrMiss
	}

	return nil
}

// GetStale implements Store.
func (s *FileStore) GetStale(_ context.Context, key string, dest interface{}) (time.Duration, error) {
	env, err := s.read(key)
	if err != nil {
		return 0, err
	}

	if err := json.Unmarshal(env.Payload, dest); err != nil {
		return 0, ErrMiss
	}

	return env.age(time.Now()), nil
}

// read loads and decodes an entry. Any damage is reported as ErrMiss.
func (s *FileStore) read(key string) (*envelope, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithFields(map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			}).Warn("Cache file unreadable, treating as miss")
		}
		return nil, ErrMiss
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Cache file corrupted, treating as miss")
		return nil, ErrMiss
	}

	return &env, nil
}

// Set implements Store.
func (s *FileStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	env, err := newEnvelope(value, ttl, time.Now())
	if err != nil {
		return err
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("cache: marshal entry: %w", err)
	}

	// Stage, then publish atomically.
	tmp, err := os.CreateTemp(s.dir, hashKey(key)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("cache: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cache: publish entry: %w", err)
	}

	return nil
}

// Invalidate implements Store.
func (s *FileStore) Invalidate(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cache: invalidate: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear(_ context.Context) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("cache: read dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.WithFields(map[string]interface{}{
				"file":  entry.Name(),
				"error": err.Error(),
			}).Warn("Failed to remove cache file")
			continue
		}
		removed++
	}

	return removed, nil
}

// Info implements Store. Validity is computed from entry metadata without
// touching any provider.
func (s *FileStore) Info(_ context.Context) (Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return Info{}, fmt.Errorf("cache: read dir: %w", err)
	}

	info := Info{}
	now := time.Now()

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			continue
		}

		info.TotalEntries++
		info.TotalSizeBytes += fi.Size()

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			info.ExpiredEntries++
			continue
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Damaged entries count as expired: a Get would miss.
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

var _ Store = (*FileStore)(nil)
