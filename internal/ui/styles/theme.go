// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// THEME
// =============================================================================

// Theme bundles the lipgloss styles used by the TUI panes.
type Theme struct {
	// Message bubbles
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	RoleLabel       lipgloss.Style
	Timestamp       lipgloss.Style
	SourceLink      lipgloss.Style

	// Sidebar
	SidebarPane   lipgloss.Style
	SidebarTitle  lipgloss.Style
	SidebarEntry  lipgloss.Style
	SidebarActive lipgloss.Style
	SidebarEmpty  lipgloss.Style

	// Chrome
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	Notice    lipgloss.Style
	Warning   lipgloss.Style
	ErrorText lipgloss.Style
	InputBox  lipgloss.Style
	Help      lipgloss.Style
}

// NewTheme builds the default adaptive theme.
func NewTheme() *Theme {
	return &Theme{
		UserBubble: lipgloss.NewStyle().
			Foreground(UserBubbleFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(UserBubbleBorder).
			Padding(0, 1),

		AssistantBubble: lipgloss.NewStyle().
			Foreground(AssistantBubbleFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(AssistantBubbleBorder).
			Padding(0, 1),

		ErrorBubble: lipgloss.NewStyle().
			Foreground(ErrorBubbleFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorBubbleBorder).
			Padding(0, 1),

		RoleLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan),

		Timestamp: lipgloss.NewStyle().
			Foreground(TextMuted),

		SourceLink: lipgloss.NewStyle().
			Foreground(Cyan).
			Underline(true),

		SidebarPane: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(Overlay).
			Padding(0, 1),

		SidebarTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(TextSecondary).
			MarginBottom(1),

		SidebarEntry: lipgloss.NewStyle().
			Foreground(TextSecondary),

		SidebarActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan),

		SidebarEmpty: lipgloss.NewStyle().
			Foreground(TextMuted).
			Italic(true),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(TextPrimary).
			Background(SurfaceDim).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(TextSecondary).
			Background(SurfaceDim).
			Padding(0, 1),

		Notice: lipgloss.NewStyle().
			Foreground(Emerald).
			Italic(true),

		Warning: lipgloss.NewStyle().
			Foreground(Amber),

		ErrorText: lipgloss.NewStyle().
			Foreground(Rose).
			Bold(true),

		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(TextMuted),
	}
}
