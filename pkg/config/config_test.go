package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8090" {
		t.Errorf("Expected Port to be 8090, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Cache.Backend != "file" {
		t.Errorf("Expected Cache.Backend to be file, got %s", cfg.Cache.Backend)
	}

	if cfg.Cache.TTL != 12*time.Hour {
		t.Errorf("Expected Cache.TTL to be 12h, got %s", cfg.Cache.TTL)
	}

	if cfg.MarketData.Benchmark != "SPY" {
		t.Errorf("Expected benchmark to be SPY, got %s", cfg.MarketData.Benchmark)
	}

	if cfg.FRED.RateSeries != "DGS10" {
		t.Errorf("Expected rate series to be DGS10, got %s", cfg.FRED.RateSeries)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("CACHE_BACKEND", "memory")
	os.Setenv("CACHE_TTL", "1h")
	os.Setenv("BLS_YEARS_BACK", "3")
	os.Setenv("LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("CACHE_BACKEND")
		os.Unsetenv("CACHE_TTL")
		os.Unsetenv("BLS_YEARS_BACK")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Cache.Backend != "memory" {
		t.Errorf("Expected Cache.Backend to be memory, got %s", cfg.Cache.Backend)
	}

	if cfg.Cache.TTL != time.Hour {
		t.Errorf("Expected Cache.TTL to be 1h, got %s", cfg.Cache.TTL)
	}

	if cfg.BLS.YearsBack != 3 {
		t.Errorf("Expected BLS.YearsBack to be 3, got %d", cfg.BLS.YearsBack)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}
}

func TestValidateRejectsBadBackend(t *testing.T) {
	os.Setenv("CACHE_BACKEND", "clickhouse")
	defer os.Unsetenv("CACHE_BACKEND")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for unknown cache backend, got nil")
	}
}

func TestValidateRejectsBadEnv(t *testing.T) {
	os.Setenv("ENV", "qa")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error for unknown environment, got nil")
	}
}
