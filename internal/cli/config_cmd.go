// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration command handler.
//
// Subcommands:
//   show (default)   Print the effective configuration
//   set <key> <val>  Set a configuration value and save
//   path             Print the config file location
package cli

import (
	"fmt"
	"strconv"

	"github.com/jeranaias/tagwise-tui/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		return showConfig()

	case "set":
		if args.ConfigKey == "" {
			return fmt.Errorf("usage: tagwise config set <key> <value>")
		}
		return setConfig(args.ConfigKey, args.ConfigVal)

	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	default:
		return fmt.Errorf("unknown subcommand %q, expected show, set or path", args.Subcommand)
	}
}

// showConfig prints the effective configuration.
func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println(TitleStyle.Render("tagwise configuration"))
	fmt.Printf("%s %s\n", LabelStyle.Render("base_url"), ValueStyle.Render(cfg.BaseURL))
	fmt.Printf("%s %s\n", LabelStyle.Render("timeout"), ValueStyle.Render(fmt.Sprintf("%ds", cfg.RequestTimeoutSecs)))
	fmt.Printf("%s %s\n", LabelStyle.Render("streaming"), ValueStyle.Render(strconv.FormatBool(cfg.StreamingEnabled)))
	fmt.Printf("%s %s\n", LabelStyle.Render("theme"), ValueStyle.Render(cfg.UI.Theme))
	fmt.Printf("%s %s\n", LabelStyle.Render("highlight"), ValueStyle.Render(strconv.FormatBool(cfg.UI.SyntaxHighlight)))
	fmt.Printf("%s %s\n", LabelStyle.Render("sidebar"), ValueStyle.Render(fmt.Sprintf("%d cols", cfg.UI.SidebarWidth)))
	return nil
}

// setConfig updates one key and saves the config file.
func setConfig(key, value string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch key {
	case "base_url":
		cfg.BaseURL = value
	case "request_timeout_secs", "timeout":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("timeout must be a number of seconds")
		}
		cfg.RequestTimeoutSecs = n
	case "streaming_enabled", "streaming":
		cfg.StreamingEnabled = value == "true" || value == "1"
	case "ui.theme", "theme":
		cfg.UI.Theme = value
	case "ui.syntax_highlight":
		cfg.UI.SyntaxHighlight = value == "true" || value == "1"
	case "ui.sidebar_width":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("sidebar width must be a number of columns")
		}
		cfg.UI.SidebarWidth = n
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Println(SuccessStyle.Render("Saved " + key + "."))
	return nil
}
