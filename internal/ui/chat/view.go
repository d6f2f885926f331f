// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tagwise-tui/internal/model"
	"github.com/jeranaias/tagwise-tui/internal/session"
	"github.com/jeranaias/tagwise-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat screen.
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	header := m.theme.Header.Width(m.width).Render("tagwise - chat with your bookmarks")

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		m.sidebarPane.View(),
		m.viewport.View(),
	)

	var inputArea string
	switch m.mode {
	case ModeRename:
		inputArea = m.theme.InputBox.Width(m.width - 2).
			Render("Rename: " + m.renameInput.View())
	case ModeConfirmDelete:
		inputArea = m.theme.InputBox.Width(m.width - 2).
			Render(m.theme.ErrorText.Render("Delete this conversation? (y/n)"))
	default:
		prompt := m.input.View()
		if m.busy {
			prompt = m.spin.View() + " " + prompt
		}
		inputArea = m.theme.InputBox.Width(m.width - 2).Render(prompt)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		main,
		inputArea,
		m.statusBar.View(),
	)
}

// refreshViewport rebuilds the transcript pane from session state and
// keeps it scrolled to the newest message.
func (m *Model) refreshViewport() {
	msgs := m.sess.Messages()

	// Only the greeting present: show the welcome banner instead.
	if len(msgs) == 1 && msgs[0].Content == session.WelcomeText {
		m.viewport.SetContent(m.welcome.View())
		return
	}

	var sb strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n")
	}

	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

// renderMessage renders one message bubble.
func (m *Model) renderMessage(msg model.Message) string {
	width := m.viewport.Width - 4
	if width < 20 {
		width = 20
	}

	label := m.theme.RoleLabel.Render(msg.Role.DisplayName())
	ts := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))

	body := m.renderBody(msg.Content, width)
	if msg.Streaming && body == "" {
		body = m.spin.View() + " thinking..."
	}

	bubble := m.theme.AssistantBubble
	if msg.Role == model.RoleUser {
		bubble = m.theme.UserBubble
	}
	if msg.IsError {
		bubble = m.theme.ErrorBubble
	}

	out := label + " " + ts + "\n" + bubble.MaxWidth(width).Render(body)

	if msg.HasSources() {
		var src strings.Builder
		src.WriteString(m.theme.Timestamp.Render("Sources:"))
		for _, s := range msg.Sources {
			title := s.Title
			if title == "" {
				title = s.URL
			}
			src.WriteString("\n  ")
			src.WriteString(m.theme.SourceLink.Render(title))
			src.WriteString(m.theme.Timestamp.Render(" <" + s.URL + ">"))
		}
		out += "\n" + src.String()
	}

	return out
}

// renderBody renders message text, passing fenced code blocks through
// the syntax highlighter.
func (m *Model) renderBody(content string, width int) string {
	parts := strings.Split(content, "```")
	if len(parts) == 1 {
		return content
	}

	var sb strings.Builder
	for i, part := range parts {
		if i%2 == 0 {
			sb.WriteString(part)
			continue
		}

		// Odd segments are code. The first line may name a language.
		language := ""
		code := part
		if nl := strings.IndexByte(part, '\n'); nl >= 0 {
			first := strings.TrimSpace(part[:nl])
			if first != "" && !strings.ContainsAny(first, " \t") {
				language = first
				code = part[nl+1:]
			}
		}

		block := components.NewCodeBlock(language, code)
		block.MaxWidth = width
		if m.cfg.UI.SyntaxHighlight {
			sb.WriteString("\n" + block.Render() + "\n")
		} else {
			sb.WriteString("\n" + block.RenderPlain() + "\n")
		}
	}
	return sb.String()
}
