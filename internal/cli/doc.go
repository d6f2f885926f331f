// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the tagwise command-line interface: argument
// parsing, the one-shot ask command, the interactive chat REPL, and
// conversation/config/login management.
package cli
