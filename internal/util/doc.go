// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the tagwise TUI:
// rune-safe string truncation and atomic file writes used by the
// config and cookie stores.
package util
