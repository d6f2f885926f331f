// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefault(t *testing.T) {
	cmd, _ := ParseArgs(nil)
	assert.Equal(t, CmdTUI, cmd)
}

func TestParseAsk(t *testing.T) {
	cmd, args := ParseArgs([]string{"ask", "what", "did", "I", "save?"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "what did I save?", args.Query)
}

func TestParseAskWithOptions(t *testing.T) {
	cmd, args := ParseArgs([]string{"ask", "--conversation", "12", "more", "context"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "12", args.Options["conversation"])
	assert.Equal(t, "more context", args.Query)
}

func TestParseGlobalFlags(t *testing.T) {
	cmd, args := ParseArgs([]string{"--url", "http://host:9000", "--no-stream", "-q", "chat"})
	assert.Equal(t, CmdChat, cmd)
	assert.Equal(t, "http://host:9000", args.BaseURL)
	assert.True(t, args.NoStream)
	assert.True(t, args.Quiet)
}

func TestParseConversations(t *testing.T) {
	cmd, args := ParseArgs([]string{"conversations", "export", "12", "--format", "md", "--output", "/tmp"})
	assert.Equal(t, CmdConversations, cmd)
	assert.Equal(t, "export", args.Subcommand)
	assert.Equal(t, []string{"12"}, args.Raw)
	assert.Equal(t, "md", args.Options["format"])
	assert.Equal(t, "/tmp", args.Options["output"])
}

func TestParseConversationsDeleteYes(t *testing.T) {
	cmd, args := ParseArgs([]string{"conversations", "delete", "3", "--yes"})
	assert.Equal(t, CmdConversations, cmd)
	assert.Equal(t, "delete", args.Subcommand)
	assert.Equal(t, "true", args.Options["yes"])
}

func TestParseConfigSet(t *testing.T) {
	cmd, args := ParseArgs([]string{"config", "set", "base_url", "http://host"})
	assert.Equal(t, CmdConfig, cmd)
	assert.Equal(t, "set", args.Subcommand)
	assert.Equal(t, "base_url", args.ConfigKey)
	assert.Equal(t, "http://host", args.ConfigVal)
}

func TestParseLogin(t *testing.T) {
	cmd, args := ParseArgs([]string{"login", "alice"})
	assert.Equal(t, CmdLogin, cmd)
	assert.Equal(t, "alice", args.Query)
}

func TestParseBareQueryFallsBackToAsk(t *testing.T) {
	cmd, args := ParseArgs([]string{"what", "about", "go?"})
	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "what about go?", args.Query)
}

func TestParseVersionAndHelp(t *testing.T) {
	cmd, _ := ParseArgs([]string{"version"})
	assert.Equal(t, CmdVersion, cmd)

	cmd, _ = ParseArgs([]string{"help"})
	assert.Equal(t, CmdHelp, cmd)
}
