package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wrenlab/sectorscope/pkg/cache"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// refreshTimeout bounds the background re-warm kicked off after a clear.
const refreshTimeout = 5 * time.Minute

// Refresher re-runs the full scoring pipeline against live providers.
type Refresher interface {
	Run(ctx context.Context) error
}

// CacheHandler serves cache inspection and maintenance endpoints.
type CacheHandler struct {
	store     cache.Store
	refresher Refresher // nil disables the post-clear re-warm
	logger    *logger.Logger
}

// NewCacheHandler creates a cache handler. refresher may be nil.
func NewCacheHandler(store cache.Store, refresher Refresher, log *logger.Logger) *CacheHandler {
	return &CacheHandler{
		store:     store,
		refresher: refresher,
		logger:    log,
	}
}

// GetInfo reports entry counts and total size, computed from stored
// metadata without touching any provider.
// GET /api/cache/info
func (h *CacheHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.store.Info(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read cache info")
		respondError(w, http.StatusInternalServerError, "Failed to read cache info")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total_files":   info.TotalEntries,
		"valid_files":   info.ValidEntries,
		"expired_files": info.ExpiredEntries,
		"total_size_mb": info.SizeMB(),
	})
}

// Clear removes all cache entries, reports how many were removed, and
// kicks an asynchronous refresh to re-warm the cache.
// POST /api/cache/clear
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	removed, err := h.store.Clear(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to clear cache")
		respondError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	h.logger.WithField("removed", removed).Info("Cache cleared")

	// Re-warm in the background so the next scoring request does not pay
	// the full provider round trip. The response does not wait for it.
	if h.refresher != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			if err := h.refresher.Run(ctx); err != nil {
				h.logger.WithError(err).Warn("Post-clear refresh failed")
			}
		}()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"files_removed": removed,
		"message":       fmt.Sprintf("removed %d cache entries", removed),
	})
}
