// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the tagwise TUI.
package chat

import (
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// SESSION -> PROGRAM BRIDGE
// =============================================================================

// Session callbacks fire on the goroutine running the operation; the
// bridge forwards them into the Bubble Tea program as messages so all
// model mutation happens on the update loop.

// TranscriptMsg signals the transcript changed.
type TranscriptMsg struct{}

// SidebarMsg signals the sidebar list changed.
type SidebarMsg struct{}

// TitleMsg signals a conversation title changed.
type TitleMsg struct {
	ID    string
	Title string
}

// NoticeMsg shows a transient status notice.
type NoticeMsg struct{ Text string }

// NoticeDoneMsg marks the notice finished (kept briefly, then removed).
type NoticeDoneMsg struct{ Text string }

// NoticeGoneMsg removes the notice.
type NoticeGoneMsg struct{}

// SlowMsg signals the slow-response window elapsed with no event.
type SlowMsg struct{}

// OpDoneMsg signals a session operation finished.
type OpDoneMsg struct{ Err error }

// Bridge implements session.View by sending program messages.
type Bridge struct {
	program *tea.Program
}

// NewBridge creates a bridge. Attach the program before starting any
// session operation.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach sets the target program.
func (b *Bridge) Attach(p *tea.Program) {
	b.program = p
}

func (b *Bridge) send(msg tea.Msg) {
	if b.program != nil {
		b.program.Send(msg)
	}
}

func (b *Bridge) TranscriptChanged()            { b.send(TranscriptMsg{}) }
func (b *Bridge) SidebarChanged()               { b.send(SidebarMsg{}) }
func (b *Bridge) TitleChanged(id, title string) { b.send(TitleMsg{ID: id, Title: title}) }
func (b *Bridge) NoticeShown(text string)       { b.send(NoticeMsg{Text: text}) }
func (b *Bridge) NoticeDone(text string)        { b.send(NoticeDoneMsg{Text: text}) }
func (b *Bridge) NoticeRemoved()                { b.send(NoticeGoneMsg{}) }
func (b *Bridge) SlowResponse()                 { b.send(SlowMsg{}) }
