package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wrenlab/sectorscope/internal/api/handlers"
	"github.com/wrenlab/sectorscope/pkg/logger"
)

// NewRouter creates and configures the HTTP router. All routing lives here.
func NewRouter(
	scores *handlers.ScoresHandler,
	cacheH *handlers.CacheHandler,
	qualityH *handlers.QualityHandler,
	hub *Hub,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Service info and health check
	r.HandleFunc("/", rootHandler).Methods("GET")
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Scoring endpoints
	api.HandleFunc("/scores", scores.GetScores).Methods("GET")
	api.HandleFunc("/scores/summary", scores.GetSummary).Methods("GET")
	api.HandleFunc("/sectors", scores.GetSectors).Methods("GET")
	api.HandleFunc("/sectors/{name}", scores.GetSector).Methods("GET")
	api.HandleFunc("/sectors/{name}/history", scores.GetSectorHistory).Methods("GET")

	// Data quality
	api.HandleFunc("/data/quality", qualityH.GetQuality).Methods("GET")

	// Cache maintenance
	api.HandleFunc("/cache/info", cacheH.GetInfo).Methods("GET")
	api.HandleFunc("/cache/clear", cacheH.Clear).Methods("POST")

	// Live score pushes
	if hub != nil {
		r.HandleFunc("/ws/scores", hub.ServeWS)
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// rootHandler describes the service and its endpoints
func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"name":    "sectorscope",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"scores":      "/api/scores",
			"summary":     "/api/scores/summary",
			"sectors":     "/api/sectors",
			"quality":     "/api/data/quality",
			"cache_info":  "/api/cache/info",
			"cache_clear": "/api/cache/clear",
			"stream":      "/ws/scores",
		},
	})
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "sectorscope-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
