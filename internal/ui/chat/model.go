// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tagwise-tui/internal/config"
	"github.com/jeranaias/tagwise-tui/internal/session"
	"github.com/jeranaias/tagwise-tui/internal/ui/components"
	"github.com/jeranaias/tagwise-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// Mode represents the interaction mode of the chat view.
type Mode int

const (
	ModeInput         Mode = iota // Typing a message
	ModeSidebar                   // Navigating the conversation list
	ModeRename                    // Editing a conversation title
	ModeConfirmDelete             // Awaiting y/n for a delete
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Orchestration
	sess *session.Session
	cfg  *config.Config

	// Interaction state
	mode      Mode
	busy      bool
	notice    string
	slowShown bool
	pendingID string // conversation targeted by a delete confirmation

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// UI components
	viewport    viewport.Model
	input       textinput.Model
	renameInput textinput.Model
	spin        spinner.Model
	sidebarPane components.SidebarPane
	statusBar   components.StatusBar
	welcome     components.Welcome

	keyMap KeyMap
}

// New creates the chat model over an existing session.
func New(sess *session.Session, cfg *config.Config) Model {
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Ask about your bookmarks..."
	input.CharLimit = 4000
	input.Focus()

	renameInput := textinput.New()
	renameInput.Placeholder = "New title"
	renameInput.CharLimit = 200

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	welcome := components.NewWelcome(theme)
	welcome.SetServer(cfg.BaseURL)

	return Model{
		sess:        sess,
		cfg:         cfg,
		theme:       theme,
		viewport:    viewport.New(0, 0),
		input:       input,
		renameInput: renameInput,
		spin:        spin,
		sidebarPane: components.NewSidebarPane(sess.Sidebar(), theme),
		statusBar:   components.NewStatusBar(theme),
		welcome:     welcome,
		keyMap:      DefaultKeyMap(),
	}
}

// SetVersion sets the version shown in the welcome banner.
func (m *Model) SetVersion(version string) {
	m.welcome.SetVersion(version)
}

// Init starts the spinner and triggers the lazy open.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		textinput.Blink,
		func() tea.Msg {
			m.sess.Open(context.Background())
			return OpDoneMsg{}
		},
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)

	case TranscriptMsg:
		m.refreshViewport()

	case SidebarMsg:
		// Pane reads the shared list directly; nothing to copy.

	case TitleMsg:
		m.statusBar.SetTitle(msg.Title)

	case NoticeMsg:
		m.notice = msg.Text
		m.statusBar.SetNotice(m.notice)

	case NoticeDoneMsg:
		m.notice = msg.Text + " - done"
		m.statusBar.SetNotice(m.notice)

	case NoticeGoneMsg:
		m.notice = ""
		m.statusBar.SetNotice("")

	case SlowMsg:
		m.slowShown = true
		m.statusBar.SetNotice(session.SlowResponseText)

	case OpDoneMsg:
		m.busy = false
		m.slowShown = false
		if msg.Err != nil {
			m.statusBar.SetStatus(components.StatusError)
			m.statusBar.SetNotice(msg.Err.Error())
		} else {
			m.statusBar.SetStatus(components.StatusReady)
			m.statusBar.SetNotice(m.notice)
		}
		m.statusBar.SetTitle(m.sess.Title())
		m.refreshViewport()
	}

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

// handleResize recomputes pane sizes.
func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	sidebarWidth := m.cfg.UI.SidebarWidth
	if sidebarWidth > m.width/3 {
		sidebarWidth = m.width / 3
	}

	// Header, input box and status bar take five rows.
	contentHeight := m.height - 5
	if contentHeight < 3 {
		contentHeight = 3
	}

	m.sidebarPane.SetSize(sidebarWidth, contentHeight)
	m.statusBar.SetWidth(m.width)
	m.welcome.SetWidth(m.width - sidebarWidth - 2)

	m.viewport.Width = m.width - sidebarWidth - 2
	m.viewport.Height = contentHeight
	m.input.Width = m.width - 6
	m.renameInput.Width = m.width - 6

	m.refreshViewport()
	return m
}

// handleKey dispatches by interaction mode.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeRename:
		return m.handleRenameKey(msg)
	case ModeConfirmDelete:
		return m.handleConfirmKey(msg)
	case ModeSidebar:
		return m.handleSidebarKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.FocusNext):
		m.mode = ModeSidebar
		m.sidebarPane.SetFocused(true)
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keyMap.NewConv):
		return m.runOp(func(ctx context.Context) error {
			return m.sess.NewConversation(ctx)
		})

	case key.Matches(msg, m.keyMap.Reset):
		return m.runOp(func(ctx context.Context) error {
			m.sess.Reset(ctx)
			return nil
		})

	case key.Matches(msg, m.keyMap.Rename):
		if m.sess.CurrentID() == "" {
			return m, nil
		}
		m.mode = ModeRename
		m.renameInput.SetValue(m.sess.Title())
		m.renameInput.Focus()
		m.input.Blur()
		return m, textinput.Blink

	case key.Matches(msg, m.keyMap.Delete):
		if id := m.sess.CurrentID(); id != "" {
			m.mode = ModeConfirmDelete
			m.pendingID = id
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Send):
		text := m.input.Value()
		if text == "" || m.busy {
			return m, nil
		}
		m.input.SetValue("")
		return m.runOp(func(ctx context.Context) error {
			return m.sess.Send(ctx, text)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.FocusNext):
		m.mode = ModeInput
		m.sidebarPane.SetFocused(false)
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keyMap.Up):
		m.sidebarPane.MoveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.sidebarPane.MoveCursor(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Delete):
		if e, ok := m.sidebarPane.Selected(); ok {
			m.mode = ModeConfirmDelete
			m.pendingID = e.ID
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Select):
		e, ok := m.sidebarPane.Selected()
		if !ok {
			return m, nil
		}
		id := e.ID
		m.mode = ModeInput
		m.sidebarPane.SetFocused(false)
		m.input.Focus()
		return m.runOp(func(ctx context.Context) error {
			return m.sess.LoadConversation(ctx, id)
		})
	}

	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		title := m.renameInput.Value()
		id := m.sess.CurrentID()
		m.mode = ModeInput
		m.renameInput.Blur()
		m.input.Focus()
		return m.runOp(func(ctx context.Context) error {
			return m.sess.RenameConversation(ctx, id, title)
		})

	case "esc":
		m.mode = ModeInput
		m.renameInput.Blur()
		m.input.Focus()
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Confirm):
		id := m.pendingID
		m.pendingID = ""
		m.mode = ModeInput
		return m.runOp(func(ctx context.Context) error {
			return m.sess.DeleteConversation(ctx, id)
		})

	case key.Matches(msg, m.keyMap.Cancel):
		m.pendingID = ""
		m.mode = ModeInput
		return m, nil
	}
	return m, nil
}

// runOp starts a session operation off the update loop.
func (m Model) runOp(op func(context.Context) error) (tea.Model, tea.Cmd) {
	m.busy = true
	m.statusBar.SetStatus(components.StatusLoading)
	return m, func() tea.Msg {
		err := op(context.Background())
		return OpDoneMsg{Err: err}
	}
}
