// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for tagwise.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdConversations
	CmdLogin
	CmdLogout
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet    bool
	Verbose  bool
	NoStream bool
	BaseURL  string

	// Command-specific
	Query      string
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args (remaining after flag parsing)
	Raw []string

	// Options holds command-specific named options (e.g., --format)
	Options map[string]string
}

const usageText = `tagwise - chat with your bookmarks from the terminal

Tagwise is a terminal client for the TagWise bookmark manager's chatbot.
Ask questions about the pages you saved; answers cite the bookmarks they
were drawn from.

Usage:
  tagwise                          Start TUI (default)
  tagwise ask "question"           Ask a single question
  tagwise chat                     Interactive chat
  tagwise conversations list       List conversations
  tagwise conversations rename <id> <title>
  tagwise conversations delete <id> [--yes]
  tagwise conversations export <id> [--format html|md] [--output DIR]
  tagwise login [username]         Log in to the TagWise server
  tagwise logout                   Discard the stored session
  tagwise config [show|set|path]   Configuration
  tagwise version                  Show version
  tagwise help                     Show this help

Global flags:
  --url URL       Override the server base URL
  --no-stream     Disable streaming responses
  -q, --quiet     Minimal output
  -v, --verbose   Verbose output

Examples:
  tagwise ask "what did I save about go generics?"
  tagwise --url https://tagwise.example.com chat
  tagwise conversations export 12 --format html --output ~/exports

Configuration: ~/.tagwise/config.toml
Environment:   TAGWISE_BASE_URL, TAGWISE_TIMEOUT_SECS, TAGWISE_STREAMING
`

// PrintUsage prints command usage to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("tagwise %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses an argument slice. Split out from Parse for tests.
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, args

	case "ask":
		parseAskArgs(&args, remaining)
		return CmdAsk, args

	case "chat":
		return CmdChat, args

	case "conversations", "conversation", "conv":
		if len(remaining) > 0 {
			args.Subcommand = strings.ToLower(remaining[0])
			args.Raw = remaining[1:]
		}
		parseOptions(&args)
		return CmdConversations, args

	case "login":
		if len(remaining) > 0 {
			args.Query = remaining[0]
		}
		return CmdLogin, args

	case "logout":
		return CmdLogout, args

	case "config":
		parseConfigArgs(&args, remaining)
		return CmdConfig, args

	case "version", "--version", "-V":
		return CmdVersion, args

	case "help", "--help", "-h":
		return CmdHelp, args

	default:
		// Unknown first word: treat the whole line as an ask query.
		args.Query = strings.Join(append([]string{cmd}, remaining...), " ")
		return CmdAsk, args
	}
}

// parseGlobalFlags extracts global flags, returning the rest.
func parseGlobalFlags(argv []string) ([]string, Args) {
	args := Args{Options: make(map[string]string)}
	var remaining []string

	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "-q", "--quiet":
			args.Quiet = true
		case "-v", "--verbose":
			args.Verbose = true
		case "--no-stream":
			args.NoStream = true
		case "--url":
			if i+1 < len(argv) {
				i++
				args.BaseURL = argv[i]
			}
		default:
			remaining = append(remaining, argv[i])
		}
	}

	return remaining, args
}

// parseAskArgs collects the query string and ask-specific flags.
func parseAskArgs(args *Args, remaining []string) {
	var queryParts []string
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		if strings.HasPrefix(arg, "--") {
			key := strings.TrimPrefix(arg, "--")
			if i+1 < len(remaining) && !strings.HasPrefix(remaining[i+1], "--") {
				i++
				args.Options[key] = remaining[i]
			} else {
				args.Options[key] = "true"
			}
			continue
		}
		queryParts = append(queryParts, arg)
	}
	args.Query = strings.Join(queryParts, " ")
}

// parseConfigArgs handles config subcommands: show (default), set, path.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) == 0 {
		args.Subcommand = "show"
		return
	}
	args.Subcommand = strings.ToLower(remaining[0])
	if args.Subcommand == "set" && len(remaining) >= 3 {
		args.ConfigKey = remaining[1]
		args.ConfigVal = remaining[2]
	}
}

// parseOptions lifts trailing --key value pairs out of args.Raw.
func parseOptions(args *Args) {
	var positional []string
	raw := args.Raw
	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if strings.HasPrefix(arg, "--") {
			key := strings.TrimPrefix(arg, "--")
			if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "--") {
				i++
				args.Options[key] = raw[i]
			} else {
				args.Options[key] = "true"
			}
			continue
		}
		positional = append(positional, arg)
	}
	args.Raw = positional
}
