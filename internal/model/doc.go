// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for TagWise conversations
// and chat messages.
//
// The transcript and sidebar keep these structures in memory as the
// single source of truth; every render surface (TUI viewport, REPL
// output, HTML export) is a pure projection of them.
package model
