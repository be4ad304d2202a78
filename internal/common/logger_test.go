package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "warning", want: slog.LevelWarn},
		{input: " error ", want: slog.LevelError},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLoggerTo(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, "json"))

		LogInfo("trained", Fields{"samples": 8})
		LogDebug("hidden", nil)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "trained", entry["msg"])
		assert.Equal(t, "INFO", entry["level"])
		assert.InDelta(t, 8, entry["samples"], 0)
	})

	t.Run("console format", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SetupLoggerTo(&buf, slog.LevelDebug, "console"))

		LogWarn("drift", Fields{"ratio": 0.1})
		LogError(errors.New("boom"), "failed", Fields{"op": "train"})
		LogDebug("shown", nil)

		out := buf.String()
		assert.Contains(t, out, "level=WARN msg=drift ratio=0.1")
		assert.Contains(t, out, "error=boom")
		assert.Contains(t, out, "op=train")
		assert.Contains(t, out, "msg=shown")
	})

	t.Run("invalid format", func(t *testing.T) {
		err := SetupLoggerTo(&bytes.Buffer{}, slog.LevelInfo, "xml")
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}
