// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for tagwise.
//
// Configuration lives in a single TOML file with sensible defaults and
// environment variable overrides.
//
// Configuration file locations (in order of precedence):
//   - ~/.tagwise/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/tagwise-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete tagwise configuration.
type Config struct {
	// BaseURL is the root URL of the TagWise backend.
	BaseURL string `toml:"base_url"`

	// RequestTimeoutSecs bounds non-streaming HTTP requests.
	RequestTimeoutSecs int `toml:"request_timeout_secs"`

	// StreamingEnabled selects streaming responses; when false every
	// exchange falls back to the synchronous ask endpoint.
	StreamingEnabled bool `toml:"streaming_enabled"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// UIConfig contains terminal display configuration.
type UIConfig struct {
	// Theme is the color theme: "dark", "light", or "auto"
	Theme string `toml:"theme"`
	// SyntaxHighlight enables chroma highlighting of code blocks
	SyntaxHighlight bool `toml:"syntax_highlight"`
	// SidebarWidth is the conversation sidebar width in columns
	SidebarWidth int `toml:"sidebar_width"`
	// CompactMode reduces vertical whitespace in the transcript
	CompactMode bool `toml:"compact_mode"`
}

// Default returns a configuration with built-in defaults.
func Default() *Config {
	return &Config{
		BaseURL:            "http://localhost:8000",
		RequestTimeoutSecs: 30,
		StreamingEnabled:   true,
		UI: UIConfig{
			Theme:           "auto",
			SyntaxHighlight: true,
			SidebarWidth:    28,
			CompactMode:     false,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the tagwise configuration directory (~/.tagwise).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tagwise"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOADING
// =============================================================================

// Load loads the configuration from the default location.
// Missing files are not an error: defaults apply, then environment
// overrides, then validation.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, cfg.Validate()
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the configuration from a specific TOML file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides.
// Environment variables take precedence over file values.
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("TAGWISE_BASE_URL"); base != "" {
		c.BaseURL = base
	}
	if secs := os.Getenv("TAGWISE_TIMEOUT_SECS"); secs != "" {
		if n, err := strconv.Atoi(secs); err == nil && n > 0 {
			c.RequestTimeoutSecs = n
		}
	}
	if streaming := os.Getenv("TAGWISE_STREAMING"); streaming != "" {
		c.StreamingEnabled = streaming == "true" || streaming == "1"
	}
	if theme := os.Getenv("TAGWISE_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "base_url",
			Message: fmt.Sprintf("invalid URL %q, expected http(s)://host[:port]", c.BaseURL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "base_url",
			Message: fmt.Sprintf("unsupported scheme %q, must be http or https", u.Scheme),
		})
	}

	if c.RequestTimeoutSecs <= 0 {
		errs = append(errs, ValidationError{
			Field:   "request_timeout_secs",
			Message: "must be positive",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme %q, must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if c.UI.SidebarWidth < 10 || c.UI.SidebarWidth > 80 {
		errs = append(errs, ValidationError{
			Field:   "ui.sidebar_width",
			Message: "must be between 10 and 80 columns",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to the default location.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# tagwise configuration file")
	fmt.Fprintln(&buf, "# Generated by tagwise - edit with care")
	fmt.Fprintln(&buf, "")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
