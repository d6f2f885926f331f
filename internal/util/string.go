// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "strings"

// UNICODE: Rune-aware truncation preserves multi-byte characters.

// TruncateRunes truncates a string to a maximum number of runes.
// If the string is truncated, "..." is appended.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// FirstLine returns the first line of a string with surrounding
// whitespace removed. Used for conversation title previews.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// CollapseWhitespace replaces runs of whitespace (including newlines)
// with a single space. Used when rendering titles in one-line contexts.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RuneLen returns the number of runes in a string.
// Safer than len() for UTF-8 strings.
func RuneLen(s string) int {
	return len([]rune(s))
}
