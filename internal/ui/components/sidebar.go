// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/tagwise-tui/internal/sidebar"
	"github.com/jeranaias/tagwise-tui/internal/ui/styles"
)

// =============================================================================
// SIDEBAR PANE
// =============================================================================

// SidebarPane renders the conversation list beside the transcript.
type SidebarPane struct {
	list    *sidebar.List
	cursor  int
	width   int
	height  int
	focused bool
	theme   *styles.Theme
}

// NewSidebarPane creates a sidebar pane over a conversation list.
func NewSidebarPane(list *sidebar.List, theme *styles.Theme) SidebarPane {
	return SidebarPane{list: list, theme: theme}
}

// SetSize sets the pane dimensions.
func (p *SidebarPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetFocused toggles keyboard focus highlighting.
func (p *SidebarPane) SetFocused(focused bool) {
	p.focused = focused
}

// Focused reports whether the pane has keyboard focus.
func (p *SidebarPane) Focused() bool {
	return p.focused
}

// MoveCursor moves the selection by delta, clamped to the list.
func (p *SidebarPane) MoveCursor(delta int) {
	n := p.list.Len()
	if n == 0 {
		p.cursor = 0
		return
	}
	p.cursor += delta
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= n {
		p.cursor = n - 1
	}
}

// Selected returns a copy of the entry under the cursor.
func (p *SidebarPane) Selected() (sidebar.Entry, bool) {
	entries := p.list.Entries()
	if p.cursor < 0 || p.cursor >= len(entries) {
		return sidebar.Entry{}, false
	}
	return entries[p.cursor], true
}

// View renders the pane.
func (p SidebarPane) View() string {
	var sb strings.Builder

	title := "Conversations"
	if p.focused {
		title = "> " + title
	}
	sb.WriteString(p.theme.SidebarTitle.Render(title))
	sb.WriteString("\n")

	entries := p.list.Entries()
	if len(entries) == 0 {
		sb.WriteString(p.theme.SidebarEmpty.Render(p.list.Placeholder()))
	}

	// Border and padding consume four columns.
	textWidth := p.width - 4
	if textWidth < 8 {
		textWidth = 8
	}

	for i, e := range entries {
		label := runewidth.Truncate(e.Title, textWidth, "...")
		style := p.theme.SidebarEntry
		if e.Active {
			style = p.theme.SidebarActive
		}
		line := style.Render(label)
		if p.focused && i == p.cursor {
			line = p.theme.SidebarActive.Reverse(true).Render(label)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	pane := p.theme.SidebarPane.Width(p.width)
	if p.height > 0 {
		pane = pane.Height(p.height)
	}
	return pane.Render(sb.String())
}
