// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
	assert.Equal(t, 30, cfg.RequestTimeoutSecs)
	assert.True(t, cfg.StreamingEnabled)
	assert.Equal(t, "auto", cfg.UI.Theme)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromPathMissingFile(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().BaseURL, cfg.BaseURL)
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
base_url = "https://tagwise.example.com"
request_timeout_secs = 5
streaming_enabled = false

[ui]
theme = "dark"
sidebar_width = 40
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "https://tagwise.example.com", cfg.BaseURL)
	assert.Equal(t, 5, cfg.RequestTimeoutSecs)
	assert.False(t, cfg.StreamingEnabled)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, 40, cfg.UI.SidebarWidth)
	// Fields absent from the file keep their defaults.
	assert.True(t, cfg.UI.SyntaxHighlight)
}

func TestLoadFromPathMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("base_url = [broken"), 0600))

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TAGWISE_BASE_URL", "http://10.0.0.5:9000")
	t.Setenv("TAGWISE_TIMEOUT_SECS", "7")
	t.Setenv("TAGWISE_STREAMING", "false")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000", cfg.BaseURL)
	assert.Equal(t, 7, cfg.RequestTimeoutSecs)
	assert.False(t, cfg.StreamingEnabled)
}

func TestEnvOverrideBadTimeoutIgnored(t *testing.T) {
	t.Setenv("TAGWISE_TIMEOUT_SECS", "banana")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.RequestTimeoutSecs)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad url", func(c *Config) { c.BaseURL = "not a url" }, "base_url"},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://host" }, "base_url"},
		{"zero timeout", func(c *Config) { c.RequestTimeoutSecs = 0 }, "request_timeout_secs"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"sidebar too narrow", func(c *Config) { c.UI.SidebarWidth = 3 }, "ui.sidebar_width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.BaseURL = "https://tagwise.example.com"
	cfg.UI.Theme = "light"
	require.NoError(t, SaveToPath(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.BaseURL, loaded.BaseURL)
	assert.Equal(t, "light", loaded.UI.Theme)
}
