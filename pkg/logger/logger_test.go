package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"default config", Config{Level: "info", Output: "stderr", Format: "text"}},
		{"debug level", Config{Level: "debug", Output: "stderr", Format: "text"}},
		{"json format", Config{Level: "info", Output: "stderr", Format: "json"}},
		{"stdout output", Config{Level: "info", Output: "stdout", Format: "text"}},
		{"unwritable file falls back to stderr", Config{Level: "info", Output: "/nonexistent/dir/x.log"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, New(tt.config))
		})
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Writer: &buf})

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	content := buf.String()
	assert.NotContains(t, content, "debug message")
	assert.NotContains(t, content, "info message")
	assert.Contains(t, content, "warn message")
	assert.Contains(t, content, "error message")
}

func TestWithAndComponent(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Writer: &buf})

	base.Component("tracker").With("skill_id", "guitar").Info("session logged", "duration", 45)

	content := buf.String()
	assert.Contains(t, content, "component=tracker")
	assert.Contains(t, content, "skill_id=guitar")
	assert.Contains(t, content, "duration=45")
	assert.Contains(t, content, "session logged")
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Writer: &buf})

	log.Info("skill added", "name", "Guitar", "target_hours", 1000)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "skill added", entry["msg"])
	assert.Equal(t, "Guitar", entry["name"])
	assert.EqualValues(t, 1000, entry["target_hours"])
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "tracker.log")

	log := New(Config{Level: "info", Output: logFile, Format: "text"})
	log.Info("message 1")
	log.Error("error message")

	data, err := os.ReadFile(logFile) // nolint:gosec
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "message 1"))
	assert.True(t, strings.Contains(string(data), "error message"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
		{"", "INFO"},
		{"WaRn", "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.level).String())
		})
	}
}

func TestValidLevelAndFormat(t *testing.T) {
	for _, level := range Levels {
		assert.True(t, ValidLevel(level), level)
	}
	assert.False(t, ValidLevel("trace"))
	assert.False(t, ValidLevel("WARN"))

	assert.True(t, ValidFormat("text"))
	assert.True(t, ValidFormat("json"))
	assert.False(t, ValidFormat("xml"))
}

func TestNoop(t *testing.T) {
	log := Noop()
	require.NotNil(t, log)

	log.Debug("debug")
	log.Component("x").Error("error")
}
