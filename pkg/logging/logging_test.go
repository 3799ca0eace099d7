package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"warning alias", "WARNING", slog.LevelWarn},
		{"error", "Error", slog.LevelError},
		{"whitespace", "  info  ", slog.LevelInfo},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.level))
		})
	}
}

func TestNewStructuredLogger(t *testing.T) {
	logger := NewStructuredLogger("findeploy", "test", "debug")
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))

	logger = NewStructuredLogger("findeploy", "test", "error")
	assert.False(t, logger.Enabled(t.Context(), slog.LevelInfo))
}

func TestNewLogLogger(t *testing.T) {
	std := NewLogLogger(slog.LevelInfo, false)
	require.NotNil(t, std)
}
