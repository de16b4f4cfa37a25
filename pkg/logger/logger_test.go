package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/wrenlab/sectorscope/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"fatal":   zerolog.FatalLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}

	for input, expected := range cases {
		if got := parseLogLevel(input); got != expected {
			t.Errorf("parseLogLevel(%q) = %v, want %v", input, got, expected)
		}
	}
}

func TestNewDoesNotPanic(t *testing.T) {
	cfg := &config.Config{Env: "development", LogLevel: "debug", LogFormat: "console"}
	log := New(cfg)
	if log == nil {
		t.Fatal("New returned nil")
	}

	log.WithField("k", "v").Debug("debug message")
	log.WithFields(map[string]interface{}{"a": 1, "b": "two"}).Info("info message")
}
