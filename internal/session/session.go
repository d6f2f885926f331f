// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session orchestrates one chat panel: conversation lifecycle,
// the in-flight operation guard, and transcript state.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/tagwise-tui/internal/api"
	"github.com/jeranaias/tagwise-tui/internal/markdown"
	"github.com/jeranaias/tagwise-tui/internal/model"
	"github.com/jeranaias/tagwise-tui/internal/sidebar"
)

// =============================================================================
// FIXED USER-FACING TEXT
// =============================================================================

const (
	// WelcomeText is shown whenever the transcript is empty or reset.
	WelcomeText = "Hi! I'm TagWise. Ask me anything about your bookmarks."

	// initFailedText blocks sends after a failed backend initialization.
	initFailedText = "Sorry, I couldn't get ready to answer questions. Please try again later."

	// sendFailedText replaces the assistant bubble on a per-message
	// network failure. Unlike init failures, these are recoverable.
	sendFailedText = "Sorry, something went wrong while answering. Please try again."

	// loadFailedText replaces the transcript when history cannot be
	// fetched.
	loadFailedText = "Couldn't load this conversation."

	// SlowResponseText swaps in for the pending indicator when no event
	// has arrived within the slow-response window.
	SlowResponseText = "This is taking longer than expected..."
)

const (
	// defaultSlowAfter is the advisory slow-response window. It never
	// cancels the request; a late event still overwrites the notice.
	defaultSlowAfter = 15 * time.Second

	// defaultNoticeLinger is how long a "done" status notice stays
	// visible after a title event before it is removed.
	defaultNoticeLinger = 3 * time.Second
)

// ErrBusy is returned when an operation is refused because another one
// is already in flight.
var ErrBusy = errors.New("another operation is in progress")

// =============================================================================
// VIEW INTERFACE
// =============================================================================

// View receives render callbacks from the session. Implementations must
// be safe to call from the goroutine running the session operation; the
// bubbletea surface bridges these into program messages.
type View interface {
	// TranscriptChanged fires after any transcript mutation, including
	// each content event during streaming.
	TranscriptChanged()

	// SidebarChanged fires after the sidebar list is mutated.
	SidebarChanged()

	// TitleChanged fires when a conversation title changes, live during
	// streaming or after an explicit rename.
	TitleChanged(id, title string)

	// NoticeShown displays a transient status notice outside the
	// permanent transcript. NoticeDone marks it finished; it is removed
	// after the linger delay via NoticeRemoved.
	NoticeShown(text string)
	NoticeDone(text string)
	NoticeRemoved()

	// SlowResponse fires once per exchange when no stream event has
	// arrived within the slow-response window.
	SlowResponse()
}

// NopView discards all callbacks. Useful for one-shot surfaces that
// only inspect the transcript afterwards.
type NopView struct{}

func (NopView) TranscriptChanged()            {}
func (NopView) SidebarChanged()               {}
func (NopView) TitleChanged(id, title string) {}
func (NopView) NoticeShown(text string)       {}
func (NopView) NoticeDone(text string)        {}
func (NopView) NoticeRemoved()                {}
func (NopView) SlowResponse()                 {}

// =============================================================================
// SESSION
// =============================================================================

// Session owns the state of one chat panel. All operations are
// serialized by an in-flight guard: a second operation started while
// one is running is refused rather than queued.
type Session struct {
	client  *api.Client
	sidebar *sidebar.List
	view    View

	streaming    bool
	slowAfter    time.Duration
	noticeLinger time.Duration

	mu          sync.Mutex
	processing  bool
	initialized bool
	apiErr      bool
	currentID   string
	title       string
	messages    []*model.Message
	opened      bool
}

// New creates a session talking to the given client.
func New(client *api.Client, view View) *Session {
	if view == nil {
		view = NopView{}
	}
	s := &Session{
		client:       client,
		sidebar:      sidebar.NewList(),
		view:         view,
		streaming:    true,
		slowAfter:    defaultSlowAfter,
		noticeLinger: defaultNoticeLinger,
	}
	s.resetTranscriptLocked()
	return s
}

// WithStreaming selects streaming or synchronous exchanges.
func (s *Session) WithStreaming(enabled bool) *Session {
	s.streaming = enabled
	return s
}

// WithTimings overrides the slow-response window and notice linger.
// Used by tests; zero values keep the defaults.
func (s *Session) WithTimings(slowAfter, noticeLinger time.Duration) *Session {
	if slowAfter > 0 {
		s.slowAfter = slowAfter
	}
	if noticeLinger > 0 {
		s.noticeLinger = noticeLinger
	}
	return s
}

// Sidebar exposes the conversation list view-model.
func (s *Session) Sidebar() *sidebar.List {
	return s.sidebar
}

// Messages returns a snapshot of the current transcript. The copies
// are taken under the lock so render surfaces can read them while a
// streaming exchange keeps mutating the live messages.
func (s *Session) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.messages))
	for i, msg := range s.messages {
		out[i] = *msg
	}
	return out
}

// CurrentID returns the active conversation id, or "" when none.
func (s *Session) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Title returns the active conversation title.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// Processing reports whether an operation is in flight.
func (s *Session) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// APIError reports whether initialization failed and sends are blocked.
func (s *Session) APIError() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiErr
}

// =============================================================================
// GUARD
// =============================================================================

// tryBegin claims the in-flight guard. Checked before any network
// suspension so rapid double-invocation collapses to one operation.
func (s *Session) tryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return false
	}
	s.processing = true
	return true
}

// end releases the guard. Deferred on every operation so error paths
// cannot leak it.
func (s *Session) end() {
	s.mu.Lock()
	s.processing = false
	s.mu.Unlock()
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Open marks the panel visible. The first open triggers one lazy
// backend initialization; later opens are no-ops for initialization.
func (s *Session) Open(ctx context.Context) {
	s.mu.Lock()
	first := !s.opened
	s.opened = true
	s.mu.Unlock()

	if first {
		s.Initialize(ctx)
		s.RefreshList(ctx)
	}
}

// Close marks the panel hidden. State is retained for the next open.
func (s *Session) Close() {
	s.mu.Lock()
	s.opened = false
	s.mu.Unlock()
}

// Initialize prepares server-side state (bookmark indexing for
// retrieval). A failed or "error"-status init sets the sticky error
// flag that blocks sends until a later successful pass.
func (s *Session) Initialize(ctx context.Context) {
	if !s.tryBegin() {
		return
	}
	defer s.end()
	s.initializeLocked(ctx)
}

// initializeLocked runs initialization under an already-held guard.
func (s *Session) initializeLocked(ctx context.Context) bool {
	res, err := s.client.InitChatbot(ctx)

	s.mu.Lock()
	if err != nil || res.Status == "error" {
		s.apiErr = true
		s.initialized = false
		s.mu.Unlock()
		return false
	}
	s.apiErr = false
	s.initialized = true
	s.mu.Unlock()

	if res.Status == "warning" && res.Message != "" {
		// Degraded but usable (e.g. nothing indexed yet). Surfaced as
		// a notice, not an error.
		s.view.NoticeShown(res.Message)
	}
	return true
}

// Reset clears the transcript to the welcome message and clears the
// sticky error flag. No-op while an operation is in flight.
func (s *Session) Reset(ctx context.Context) {
	if !s.tryBegin() {
		return
	}
	defer s.end()

	// Server-side reset failures are non-fatal: local state clears
	// either way.
	_ = s.client.ResetChat(ctx)

	s.mu.Lock()
	s.apiErr = false
	s.resetTranscriptLocked()
	s.mu.Unlock()

	s.view.TranscriptChanged()
}

// resetTranscriptLocked replaces the transcript with the welcome
// message. Caller holds s.mu (or has exclusive access in New).
func (s *Session) resetTranscriptLocked() {
	welcome := model.NewAssistantMessage()
	welcome.Content = WelcomeText
	welcome.HTML = markdown.Render(WelcomeText)
	welcome.Streaming = false
	s.messages = []*model.Message{welcome}
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// NewConversation creates a conversation and makes it active with a
// fresh transcript. No-op while an operation is in flight.
func (s *Session) NewConversation(ctx context.Context) error {
	if !s.tryBegin() {
		return ErrBusy
	}
	defer s.end()

	info, err := s.client.CreateConversation(ctx)
	if err != nil {
		return err
	}

	id := info.ID.String()
	title := info.Title
	if title == "" {
		title = model.DefaultTitle
	}

	s.mu.Lock()
	s.currentID = id
	s.title = title
	s.resetTranscriptLocked()
	s.mu.Unlock()

	s.sidebar.Upsert(id, title)
	s.sidebar.SetActive(id)

	s.view.SidebarChanged()
	s.view.TranscriptChanged()
	return nil
}

// LoadConversation fetches full history and replaces the transcript.
// Loading the already-active conversation is a no-op, as is loading
// while an operation is in flight.
func (s *Session) LoadConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	if id == s.currentID {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if !s.tryBegin() {
		return ErrBusy
	}
	defer s.end()

	detail, err := s.client.GetConversation(ctx, id)
	if err != nil {
		s.mu.Lock()
		s.messages = []*model.Message{model.NewAssistantError(loadFailedText)}
		s.mu.Unlock()
		s.view.TranscriptChanged()
		return err
	}

	msgs := make([]*model.Message, 0, len(detail.Messages))
	for _, wm := range detail.Messages {
		if wm.IsUser {
			msgs = append(msgs, model.NewUserMessage(wm.Content))
			continue
		}
		m := model.NewAssistantMessage()
		m.Content = wm.Content
		m.HTML = markdown.Render(wm.Content)
		m.Streaming = false
		msgs = append(msgs, m)
	}

	s.mu.Lock()
	s.currentID = id
	s.title = detail.Title
	s.messages = msgs
	s.mu.Unlock()

	s.sidebar.SetActive(id)
	s.view.SidebarChanged()
	s.view.TranscriptChanged()
	return nil
}

// DeleteConversation removes a conversation. Confirmation is the
// surface's concern; by the time this runs the user has said yes.
func (s *Session) DeleteConversation(ctx context.Context, id string) error {
	if !s.tryBegin() {
		return ErrBusy
	}
	defer s.end()

	if err := s.client.DeleteConversation(ctx, id); err != nil {
		return err
	}

	s.sidebar.Remove(id)

	s.mu.Lock()
	wasActive := s.currentID == id
	if wasActive {
		s.currentID = ""
		s.title = ""
		s.resetTranscriptLocked()
	}
	s.mu.Unlock()

	s.view.SidebarChanged()
	if wasActive {
		s.view.TranscriptChanged()
	}
	return nil
}

// RenameConversation sets a new title. Empty or unchanged titles are
// ignored without a network call.
func (s *Session) RenameConversation(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	if e, ok := s.sidebar.Get(id); ok && e.Title == title {
		return nil
	}

	if !s.tryBegin() {
		return ErrBusy
	}
	defer s.end()

	if err := s.client.RenameConversation(ctx, id, title); err != nil {
		return err
	}

	s.sidebar.Rename(id, title)

	s.mu.Lock()
	if s.currentID == id {
		s.title = title
	}
	s.mu.Unlock()

	s.view.SidebarChanged()
	s.view.TitleChanged(id, title)
	return nil
}

// RefreshList reconciles the sidebar with the server's authoritative
// conversation list. Transient failures never clobber a previously
// successful render.
func (s *Session) RefreshList(ctx context.Context) {
	infos, err := s.client.ListConversations(ctx)
	if err != nil {
		s.sidebar.SyncFailed()
	} else {
		s.sidebar.Sync(infos)
	}
	s.view.SidebarChanged()
}
