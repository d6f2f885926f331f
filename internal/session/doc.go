// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns conversation state for the TagWise client: the
// transcript, the active conversation, and the sidebar list.
//
// A Session serializes all conversation operations behind a single
// in-flight guard, so only one send, load, or delete runs at a time.
// Render surfaces observe the session through the View interface; the
// TUI bridges those callbacks onto the Bubble Tea loop, while the CLI
// prints them directly.
package session
