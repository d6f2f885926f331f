// tagwise TUI - A terminal interface for the TagWise bookmark chatbot.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tagwise-tui/internal/cli"
	"github.com/jeranaias/tagwise-tui/internal/config"
	"github.com/jeranaias/tagwise-tui/internal/session"
	"github.com/jeranaias/tagwise-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	// Route to appropriate handler
	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		exitOn(cli.HandleAsk(args))
	case cli.CmdChat:
		exitOn(cli.HandleChat(args))
	case cli.CmdConversations:
		exitOn(cli.HandleConversations(args))
	case cli.CmdLogin:
		exitOn(cli.HandleLogin(args))
	case cli.CmdLogout:
		exitOn(cli.HandleLogout(args))
	case cli.CmdConfig:
		exitOn(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		runTUI(args)
	}
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI starts the full-screen interface.
func runTUI(args cli.Args) {
	cfg, client, err := cli.LoadSetup(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	bridge := chat.NewBridge()
	sess := session.New(client, bridge).WithStreaming(cfg.StreamingEnabled)

	m := chat.New(sess, cfg)
	m.SetVersion(Version)

	p := tea.NewProgram(m, tea.WithAltScreen())
	bridge.Attach(p)

	// Live config reload: surface a notice so the user knows the file
	// on disk took effect (a restart still applies structural changes).
	if path, perr := config.ConfigPath(); perr == nil {
		watcher, werr := config.NewWatcher(path, 100*time.Millisecond, func(*config.Config) {
			bridge.NoticeShown("Configuration reloaded")
		})
		if werr == nil && watcher.Watch() == nil {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := client.PersistCookies(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save session cookies: %v\n", err)
	}
}
