package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "mritopng.log", cfg.File)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.True(t, cfg.LogInTerminal)
}

func TestConfigTransportLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"unknown", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := Config{Level: tt.level}
			assert.Equal(t, tt.expected, cfg.TransportLevel())
		})
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()

	assert.Equal(t, "mritopng.log", cfg.File)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, 100, cfg.MaxSize)
	assert.False(t, cfg.LogInTerminal)
}

func TestNewLoggerAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	cfg := DefaultConfig()
	cfg.File = path
	cfg.LogInTerminal = false

	for _, msg := range []string{"first run", "second run"} {
		logger, err := NewLogger(cfg)
		require.NoError(t, err)
		logger.Info(msg)
		require.NoError(t, logger.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "INFO\tfirst run")
	assert.Contains(t, lines[1], "INFO\tsecond run")
}

func TestNewLoggerUnopenableFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	for name, path := range map[string]string{
		"parent is a file": filepath.Join(blocker, "run.log"),
		"invalid name":     filepath.Join(dir, "run\x00.log"),
	} {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.File = path
			cfg.LogInTerminal = false

			_, err := NewLogger(cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewLoggerTeesTerminal(t *testing.T) {
	var buf bytes.Buffer
	saved := console
	console = zapcore.AddSync(&buf)
	t.Cleanup(func() { console = saved })

	cfg := DefaultConfig()
	cfg.File = filepath.Join(t.TempDir(), "run.log")

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	logger.Named("batch").With(zap.String("input", "a.dcm")).Warn("skipped")
	logger.Debug("hidden")
	require.NoError(t, logger.Close())

	out := buf.String()
	assert.Contains(t, out, "WARN\tbatch\tskipped")
	assert.Contains(t, out, `"input": "a.dcm"`)
	assert.NotContains(t, out, "hidden")

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestJSONFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.File = filepath.Join(t.TempDir(), "run.json")
	cfg.Format = "json"
	cfg.LogInTerminal = false

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	logger.Errorf("failed %d files", 2)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"ERROR"`)
	assert.Contains(t, string(data), `"message":"failed 2 files"`)
}

func TestFromZap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core))

	logger.Infof("converted %s", "a.dcm")
	logger.With(zap.Int("n", 1)).Warn("skipped")
	logger.Debug("dropped")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "converted a.dcm", logs.All()[0].Message)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.NoError(t, logger.Close())
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Error("nothing")
	assert.NotNil(t, logger.Zap())
	assert.NoError(t, logger.Close())
}
