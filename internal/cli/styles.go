// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Centralized styling for all CLI commands in tagwise.
//
// Color handling:
// - Colors are automatically disabled for non-TTY output (piped, redirected)
// - Respects NO_COLOR environment variable (https://no-color.org/)
// - Supports FORCE_COLOR environment variable to override detection
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// init configures the lipgloss color profile based on terminal
// capabilities.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES FOR ALL CLI COMMANDS
// =============================================================================

var (
	// TitleStyle is used for command titles and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")). // Cyan
			MarginBottom(1)

	// LabelStyle is used for field labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Light gray
			Width(14)

	// ValueStyle is used for regular values and text
	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Off-white

	// SuccessStyle is used for success messages
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")) // Green

	// WarningStyle is used for warnings and transient notices
	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // Orange

	// ErrorStyle is used for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)

	// PromptStyle is the REPL input prompt
	PromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // Cyan
			Bold(true)

	// SourceStyle renders cited bookmark links
	SourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("111")) // Blue

	// MutedStyle renders secondary text such as ids and counts
	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)
