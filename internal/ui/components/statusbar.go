// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/tagwise-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusLoading
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming..."
	case StatusLoading:
		return "Loading..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// StatusBar is the bottom status bar showing state, conversation title
// and transient notices.
type StatusBar struct {
	status Status
	title  string
	notice string
	width  int
	theme  *styles.Theme
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *styles.Theme) StatusBar {
	return StatusBar{theme: theme}
}

// SetStatus sets the current status.
func (b *StatusBar) SetStatus(s Status) {
	b.status = s
}

// SetTitle sets the active conversation title.
func (b *StatusBar) SetTitle(title string) {
	b.title = title
}

// SetNotice sets (or clears, with "") the transient notice text.
func (b *StatusBar) SetNotice(text string) {
	b.notice = text
}

// SetWidth sets the render width.
func (b *StatusBar) SetWidth(width int) {
	b.width = width
}

// View renders the status bar.
func (b StatusBar) View() string {
	statusStyle := lipgloss.NewStyle().Foreground(styles.Emerald)
	switch b.status {
	case StatusStreaming, StatusLoading:
		statusStyle = lipgloss.NewStyle().Foreground(styles.Amber)
	case StatusError:
		statusStyle = lipgloss.NewStyle().Foreground(styles.Rose)
	}

	left := statusStyle.Render(b.status.String())
	if b.title != "" {
		left += lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(" | " + b.title)
	}

	right := ""
	if b.notice != "" {
		right = lipgloss.NewStyle().Foreground(styles.Amber).Italic(true).Render(b.notice)
	}

	gap := b.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Favor the notice: truncate the title side.
		left = runewidth.Truncate(left, maxInt(b.width-lipgloss.Width(right)-5, 8), "...")
		gap = maxInt(b.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	}

	line := left + strings.Repeat(" ", gap) + right
	return b.theme.StatusBar.Width(b.width).Render(line)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
