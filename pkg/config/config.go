package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Cache
	Cache CacheConfig

	// Database (optional, score snapshot history)
	Database DatabaseConfig

	// Redis (optional cache backend)
	Redis RedisConfig

	// External data providers
	MarketData MarketDataConfig
	FRED       FREDConfig
	BLS        BLSConfig
	Damodaran  DamodaranConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// CacheConfig holds cache store configuration.
type CacheConfig struct {
	Backend string // file, memory, redis
	Dir     string
	TTL     time.Duration
}

// DatabaseConfig holds PostgreSQL configuration. The pool is only opened
// when URL is non-empty; snapshot persistence is skipped otherwise.
type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration for the redis cache backend.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MarketDataConfig holds the price/valuation provider configuration.
// No credential is required for this source.
type MarketDataConfig struct {
	BaseURL        string
	Benchmark      string // benchmark ticker for relative strength
	Timeout        time.Duration
	RequestsPerSec float64
}

// FREDConfig holds the interest-rate provider configuration.
type FREDConfig struct {
	APIKey         string
	BaseURL        string
	RateSeries     string // long-term rate series used for macro sensitivity
	Timeout        time.Duration
	RequestsPerSec float64
}

// BLSConfig holds the employment-statistics provider configuration.
// The API key is optional; unauthenticated requests get lower rate limits.
type BLSConfig struct {
	APIKey         string
	BaseURL        string
	YearsBack      int
	Timeout        time.Duration
	RequestsPerSec float64
}

// DamodaranConfig holds the R&D-intensity dataset configuration.
type DamodaranConfig struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerSec float64
}

// SchedulerConfig controls the background refresh job.
type SchedulerConfig struct {
	Enabled bool
	// Cron spec with seconds field, e.g. "0 0 */12 * * *" for every 12h.
	RefreshSpec string
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		// Cache
		Cache: CacheConfig{
			Backend: getEnv("CACHE_BACKEND", "file"),
			Dir:     getEnv("CACHE_DIR", "data/cache"),
			TTL:     getEnvAsDuration("CACHE_TTL", "12h"),
		},

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},

		// External data providers
		MarketData: MarketDataConfig{
			BaseURL:        getEnv("MARKETDATA_BASE_URL", "https://query1.finance.yahoo.com"),
			Benchmark:      getEnv("MARKET_BENCHMARK", "SPY"),
			Timeout:        getEnvAsDuration("MARKETDATA_TIMEOUT", "30s"),
			RequestsPerSec: getEnvAsFloat("MARKETDATA_RPS", 4),
		},

		FRED: FREDConfig{
			APIKey:         getEnv("FRED_API_KEY", ""),
			BaseURL:        getEnv("FRED_BASE_URL", "https://api.stlouisfed.org/fred"),
			RateSeries:     getEnv("FRED_RATE_SERIES", "DGS10"),
			Timeout:        getEnvAsDuration("FRED_TIMEOUT", "30s"),
			RequestsPerSec: getEnvAsFloat("FRED_RPS", 2),
		},

		BLS: BLSConfig{
			APIKey:         getEnv("BLS_API_KEY", ""),
			BaseURL:        getEnv("BLS_BASE_URL", "https://api.bls.gov/publicAPI/v2"),
			YearsBack:      getEnvAsInt("BLS_YEARS_BACK", 5),
			Timeout:        getEnvAsDuration("BLS_TIMEOUT", "30s"),
			RequestsPerSec: getEnvAsFloat("BLS_RPS", 1),
		},

		Damodaran: DamodaranConfig{
			BaseURL:        getEnv("DAMODARAN_BASE_URL", "https://pages.stern.nyu.edu/~adamodar"),
			Timeout:        getEnvAsDuration("DAMODARAN_TIMEOUT", "45s"),
			RequestsPerSec: getEnvAsFloat("DAMODARAN_RPS", 1),
		},

		// Scheduler
		Scheduler: SchedulerConfig{
			Enabled:     getEnvAsBool("SCHEDULER_ENABLED", true),
			RefreshSpec: getEnv("SCHEDULER_REFRESH_SPEC", "0 0 */12 * * *"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Cache.Backend {
	case "file", "memory", "redis":
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of: file, memory, redis")
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	if c.BLS.YearsBack < 2 {
		return fmt.Errorf("BLS_YEARS_BACK must be at least 2 for year-over-year growth")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
