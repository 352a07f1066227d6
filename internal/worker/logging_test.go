package worker

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("dropped")
	logger.Warn("kept", "submission_id", 7)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, ServiceName, record["service"])
	assert.Equal(t, float64(7), record["submission_id"])
}

func TestAsynqLoggerAdapterFatalPanics(t *testing.T) {
	var buf bytes.Buffer
	adapter := &asynqLoggerAdapter{logger: newLogger(&buf, "debug", "text")}

	adapter.Debug("starting ", "up")
	assert.Contains(t, buf.String(), "starting up")
	assert.Panics(t, func() { adapter.Fatal("boom") })
}
