// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"time"

	"github.com/jeranaias/tagwise-tui/internal/api"
	"github.com/jeranaias/tagwise-tui/internal/config"
)

// LoadSetup loads the configuration and builds an API client from it,
// applying command-line overrides.
func LoadSetup(args Args) (*config.Config, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if args.BaseURL != "" {
		cfg.BaseURL = args.BaseURL
	}
	if args.NoStream {
		cfg.StreamingEnabled = false
	}

	client, err := api.NewClient(cfg.BaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid server URL: %w", err)
	}
	client = client.WithTimeout(time.Duration(cfg.RequestTimeoutSecs) * time.Second)

	if store, err := api.NewCookieStore(); err == nil {
		client = client.WithCookieStore(store)
	}

	return cfg, client, nil
}
