// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tagwise-tui/internal/ui/styles"
)

// =============================================================================
// WELCOME BANNER
// =============================================================================

// Welcome is the banner shown when the transcript holds only the
// greeting.
type Welcome struct {
	version string
	server  string
	width   int
	theme   *styles.Theme
}

// NewWelcome creates a new welcome banner.
func NewWelcome(theme *styles.Theme) Welcome {
	return Welcome{
		version: "dev",
		theme:   theme,
	}
}

// SetVersion sets the version string.
func (w *Welcome) SetVersion(version string) {
	w.version = version
}

// SetServer sets the backend server shown in the banner.
func (w *Welcome) SetServer(server string) {
	w.server = server
}

// SetWidth sets the render width.
func (w *Welcome) SetWidth(width int) {
	w.width = width
}

// View renders the banner.
func (w Welcome) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.Cyan).
		Render("tagwise")

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.TextMuted).Render(" " + w.version))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.TextPrimary).
		Render("Ask anything about the pages you bookmarked."))
	sb.WriteString("\n")
	if w.server != "" {
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.TextMuted).Render("Server: " + w.server))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(styles.TextMuted).
		Render("enter send | ctrl+n new | ctrl+r rename | ctrl+d delete | tab sidebar | esc quit"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(1, 2)
	if w.width > 0 {
		box = box.MaxWidth(w.width)
	}

	return box.Render(sb.String())
}
