package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		checkFunc func(t *testing.T, output string)
	}{
		{
			name:   "Text logger info level",
			config: Config{Level: "info", Format: "text"},
			checkFunc: func(t *testing.T, output string) {
				if !strings.Contains(output, "level=INFO") ||
					!strings.Contains(output, "msg=\"test message\"") {
					t.Errorf("Expected text log output with info level and message, got: %s", output)
				}
			},
		},
		{
			name:   "JSON logger debug level",
			config: Config{Level: "debug", Format: "json"},
			checkFunc: func(t *testing.T, output string) {
				var logEntry map[string]interface{}
				if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
					t.Fatalf("Failed to unmarshal JSON log: %v, output: %s", err, output)
				}
				if logEntry["level"] != "DEBUG" || logEntry["msg"] != "test message" {
					t.Errorf("Expected JSON log output with debug level and message, got: %v", logEntry)
				}
			},
		},
		{
			name:   "Unknown level falls back to info",
			config: Config{Level: "bogus", Format: "text"},
			checkFunc: func(t *testing.T, output string) {
				if !strings.Contains(output, "level=INFO") {
					t.Errorf("Expected fallback to info level, got: %s", output)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.config, &buf)

			if tt.config.Level == "debug" {
				logger.Debug("test message")
			} else {
				logger.Info("test message")
			}

			tt.checkFunc(t, buf.String())
		})
	}
}
