package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/covid19trackerph/tracker/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(buf *bytes.Buffer) *Logger {
	return NewWithWriter(&config.Config{Env: "test", LogLevel: "debug", LogFormat: "json"}, buf)
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"CRITICAL", zerolog.FatalLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf)

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{"debug", func() { log.Debug("cache fresh") }, "cache fresh", "debug"},
		{"info", func() { log.Infof("rows: %d", 42) }, "rows: 42", "info"},
		{"warn", func() { log.Warn("changelog missing") }, "changelog missing", "warn"},
		{"error", func() { log.Errorf("job %s failed", "summary") }, "job summary failed", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			entry := decode(t, &buf)
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.wantMsg, entry["message"])
			assert.Equal(t, "test", entry["env"])
		})
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf)

	log.WithError(errors.New("remote not found")).
		WithFields(map[string]interface{}{
			"stage": "download",
			"files": 3,
		}).
		Error("stage failed")

	entry := decode(t, &buf)
	assert.Equal(t, "remote not found", entry["error"])
	assert.Equal(t, "download", entry["stage"])
	assert.Equal(t, float64(3), entry["files"])
}

func TestTimed(t *testing.T) {
	var buf bytes.Buffer
	log := newJSONLogger(&buf)

	log.WithField("run_id", "abc").Timed("prepare data", time.Now().Add(-2*time.Second))

	entry := decode(t, &buf)
	assert.Equal(t, "abc", entry["run_id"])
	assert.GreaterOrEqual(t, entry["elapsed_sec"], 2.0)
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&config.Config{Env: "test", LogLevel: "info", LogFormat: "console"}, &buf)

	log.Info("console message")
	assert.Contains(t, buf.String(), "console message")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithField("k", "v").Info("discarded")
	})
}
