// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, "INFO", cfg.Log.Level)
	require.Len(t, cfg.Log.Output, 2)
	assert.Equal(t, "file", cfg.Log.Output[0].Type)
	assert.True(t, cfg.Log.Output[0].Enabled)
	assert.Equal(t, "console", cfg.Log.Output[1].Type)
	assert.False(t, cfg.Log.Output[1].Enabled, "console logging must be off by default")

	assert.Equal(t, 100*time.Millisecond, cfg.Stream.TailPollInterval)
	assert.False(t, cfg.Session.Enabled)
	assert.Equal(t, "none", cfg.Sink.Type)
	assert.Equal(t, 10*time.Second, cfg.Sink.Timeout)

	require.NoError(t, cfg.validate())
}

func TestNewConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, "none", cfg.Sink.Type)
}

func TestNewConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
log:
  level: DEBUG
stream:
  tail_poll_interval: 250ms
session:
  enabled: true
  dir: ` + filepath.Join(dir, "sessions") + `
sink:
  type: web
  base_url: http://localhost:8080/api
  timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Log.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.Stream.TailPollInterval)
	assert.True(t, cfg.Session.Enabled)
	assert.Equal(t, "web", cfg.Sink.Type)
	assert.Equal(t, "http://localhost:8080/api", cfg.Sink.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Sink.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid defaults", func(c *AppConfig) {}, ""},
		{"bad log level", func(c *AppConfig) { c.Log.Level = "verbose" }, "invalid log level"},
		{"lowercase log level ok", func(c *AppConfig) { c.Log.Level = "debug" }, ""},
		{"zero poll interval", func(c *AppConfig) { c.Stream.TailPollInterval = 0 }, "must be positive"},
		{"web sink without url", func(c *AppConfig) { c.Sink.Type = "web" }, "base_url is required"},
		{"unknown sink type", func(c *AppConfig) { c.Sink.Type = "kafka" }, "unknown sink type"},
		{"fake sink ok", func(c *AppConfig) { c.Sink.Type = "fake" }, ""},
		{"session without dir", func(c *AppConfig) {
			c.Session.Enabled = true
			c.Session.Dir = ""
		}, "session.dir is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "sessions"), expandPath("~/sessions"))
	assert.Equal(t, "", expandPath(""))
	assert.Equal(t, "/var/log/sessions", expandPath("/var/log/sessions"))

	t.Setenv("AGENTSTREAM_TEST_DIR", "/tmp/x")
	assert.Equal(t, "/tmp/x/sessions", expandPath("$AGENTSTREAM_TEST_DIR/sessions"))
}
