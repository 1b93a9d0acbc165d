package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/wonny/storepulse/backend/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "debug",
		LogFormat: "json",
	}

	log := New(cfg)
	if log == nil {
		t.Fatal("New returned nil")
	}

	// Derived loggers must not panic and must be distinct instances.
	withField := log.WithField("component", "test")
	if withField == log {
		t.Error("WithField returned the same instance")
	}

	withFields := log.WithFields(map[string]interface{}{"a": 1, "b": "two"})
	withFields.Debug("fields attached")

	withErr := log.WithError(nil)
	withErr.Info("nil error attached")
}
