// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jeranaias/tagwise-tui/internal/util"
)

// =============================================================================
// COOKIE STORE
// =============================================================================

// CookieStore persists session cookies between runs, the CLI's
// equivalent of the browser's cookie store for the CSRF token and
// session id. Nothing else is ever stored locally.
type CookieStore struct {
	// Path is the cookie file location.
	// Default: ~/.tagwise/cookies.json
	Path string
}

// storedCookie is the serialized form of one cookie.
type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires,omitempty"`
}

// NewCookieStore creates a store at the default location.
func NewCookieStore() (*CookieStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &CookieStore{
		Path: filepath.Join(homeDir, ".tagwise", "cookies.json"),
	}, nil
}

// NewCookieStoreWithPath creates a store at a custom location.
func NewCookieStoreWithPath(path string) *CookieStore {
	return &CookieStore{Path: path}
}

// Load reads the saved cookies. A missing file is not an error.
func (s *CookieStore) Load() ([]*http.Cookie, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		// A corrupt cookie file just means logging in again.
		return nil, nil
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		if !sc.Expires.IsZero() && sc.Expires.Before(time.Now()) {
			continue
		}
		cookies = append(cookies, &http.Cookie{
			Name:    sc.Name,
			Value:   sc.Value,
			Path:    "/",
			Expires: sc.Expires,
		})
	}
	return cookies, nil
}

// Save writes cookies to disk. The file is mode 0600: it carries the
// session credential.
func (s *CookieStore) Save(cookies []*http.Cookie) error {
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{
			Name:    c.Name,
			Value:   c.Value,
			Expires: c.Expires,
		})
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	return util.AtomicWriteFile(s.Path, data, 0600)
}

// Clear removes the cookie file (logout).
func (s *CookieStore) Clear() error {
	err := os.Remove(s.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
