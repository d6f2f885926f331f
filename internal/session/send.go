// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"
	"time"

	"github.com/jeranaias/tagwise-tui/internal/api"
	"github.com/jeranaias/tagwise-tui/internal/markdown"
	"github.com/jeranaias/tagwise-tui/internal/model"
	"github.com/jeranaias/tagwise-tui/internal/stream"
)

// =============================================================================
// SEND
// =============================================================================

// Send runs one exchange for a user message. Empty input and double
// invocation while an exchange is in flight are no-ops. The guard is
// released on every exit path.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	blocked := s.apiErr
	s.mu.Unlock()
	if blocked {
		s.appendError(initFailedText)
		return nil
	}

	if !s.tryBegin() {
		return ErrBusy
	}
	defer s.end()

	// Lazy init: first send may arrive before the panel was opened.
	s.mu.Lock()
	needInit := !s.initialized
	s.mu.Unlock()
	if needInit {
		if !s.initializeLocked(ctx) {
			s.appendError(initFailedText)
			return nil
		}
	}

	// Lazy conversation creation. The first message in a fresh
	// conversation asks the server to auto-generate a title.
	firstInConversation := false
	s.mu.Lock()
	noConversation := s.currentID == ""
	s.mu.Unlock()
	if noConversation {
		info, err := s.client.CreateConversation(ctx)
		if err != nil {
			s.appendError(sendFailedText)
			return nil
		}
		id := info.ID.String()
		title := info.Title
		if title == "" {
			title = model.DefaultTitle
		}
		s.mu.Lock()
		s.currentID = id
		s.title = title
		s.mu.Unlock()
		s.sidebar.Upsert(id, title)
		s.sidebar.SetActive(id)
		s.view.SidebarChanged()
		firstInConversation = true
	}

	// Optimistic append: the user bubble shows before any network IO.
	user := model.NewUserMessage(text)
	assistant := model.NewAssistantMessage()
	s.mu.Lock()
	convID := s.currentID
	s.messages = append(s.messages, user, assistant)
	s.mu.Unlock()
	s.view.TranscriptChanged()

	req := api.AskRequest{
		Message:        text,
		ConversationID: convID,
		GenerateTitle:  firstInConversation,
	}

	if s.streaming {
		s.streamExchange(ctx, req, assistant)
	} else {
		s.syncExchange(ctx, req, assistant)
	}

	s.RefreshList(ctx)
	return nil
}

// appendError adds an assistant-styled error bubble to the transcript.
func (s *Session) appendError(text string) {
	s.mu.Lock()
	s.messages = append(s.messages, model.NewAssistantError(text))
	s.mu.Unlock()
	s.view.TranscriptChanged()
}

// =============================================================================
// STREAMING EXCHANGE
// =============================================================================

// streamExchange consumes the NDJSON stream for one ask call, updating
// the assistant message as events arrive.
func (s *Session) streamExchange(ctx context.Context, req api.AskRequest, assistant *model.Message) {
	// Advisory slow-response notice, armed before the request goes out
	// so a server that stalls before sending headers still trips it.
	// Never cancels the request; a late event still overwrites whatever
	// the notice replaced.
	var eventSeen bool
	slow := time.AfterFunc(s.slowAfter, func() {
		s.mu.Lock()
		seen := eventSeen
		s.mu.Unlock()
		if !seen {
			s.view.SlowResponse()
		}
	})
	defer slow.Stop()

	body, err := s.client.Ask(ctx, req)
	if err != nil {
		s.failAssistant(assistant, sendFailedText)
		return
	}
	defer body.Close()

	var buf strings.Builder
	noticeActive := false
	sawTerminal := false

	dec := stream.NewDecoder(body)
	err = dec.Process(ctx, func(ev stream.Event) error {
		s.mu.Lock()
		eventSeen = true
		s.mu.Unlock()

		switch ev.Kind {
		case stream.KindMetadata:
			s.mu.Lock()
			s.currentID = ev.ConversationID
			s.mu.Unlock()
			s.sidebar.SetActive(ev.ConversationID)

		case stream.KindContent:
			buf.WriteString(ev.Chunk)
			// Full-buffer re-render: markdown constructs can span
			// chunk boundaries, and Render is not idempotent.
			s.updateAssistant(assistant, buf.String())

		case stream.KindStatus:
			noticeActive = true
			s.view.NoticeShown(ev.Message)

		case stream.KindTitle:
			s.applyTitle(ev.Title)
			if noticeActive {
				noticeActive = false
				s.view.NoticeDone(ev.Title)
				time.AfterFunc(s.noticeLinger, s.view.NoticeRemoved)
			}

		case stream.KindCompletion:
			sawTerminal = true
			s.finishAssistant(assistant, buf.String(), ev.Sources)

		case stream.KindError:
			sawTerminal = true
			s.failAssistant(assistant, ev.Message)
		}
		return nil
	})

	if err != nil && !sawTerminal && buf.Len() == 0 {
		s.failAssistant(assistant, sendFailedText)
		return
	}

	// Streams that end without a terminal event still finalize, so a
	// truncated response keeps whatever content arrived.
	if !sawTerminal {
		s.finishAssistant(assistant, buf.String(), nil)
	}
}

// =============================================================================
// SYNCHRONOUS EXCHANGE
// =============================================================================

// syncExchange delivers the whole answer in one shot. Post-conditions
// match the streaming path: buffer rendered, sources appended, title
// applied.
func (s *Session) syncExchange(ctx context.Context, req api.AskRequest, assistant *model.Message) {
	resp, err := s.client.AskSync(ctx, req)
	if err != nil {
		s.failAssistant(assistant, sendFailedText)
		return
	}

	if id := resp.ConversationID.String(); id != "" {
		s.mu.Lock()
		s.currentID = id
		s.mu.Unlock()
		s.sidebar.SetActive(id)
	}
	if resp.ConversationTitle != "" {
		s.applyTitle(resp.ConversationTitle)
	}

	s.finishAssistant(assistant, resp.Message, resp.Sources)
}

// =============================================================================
// ASSISTANT MESSAGE UPDATES
// =============================================================================

// updateAssistant re-renders the full accumulated buffer into the
// assistant message.
func (s *Session) updateAssistant(assistant *model.Message, content string) {
	s.mu.Lock()
	assistant.Content = content
	assistant.HTML = markdown.Render(content)
	s.mu.Unlock()
	s.view.TranscriptChanged()
}

// finishAssistant performs the final render and attaches sources. The
// final render runs even if content already rendered, guaranteeing
// formatting consistency for the last chunk.
func (s *Session) finishAssistant(assistant *model.Message, content string, sources []model.Source) {
	s.mu.Lock()
	assistant.Content = content
	assistant.HTML = markdown.Render(content)
	assistant.Sources = sources
	assistant.Streaming = false
	s.mu.Unlock()
	s.view.TranscriptChanged()
}

// failAssistant replaces the assistant message content with error text
// and ends the exchange.
func (s *Session) failAssistant(assistant *model.Message, text string) {
	s.mu.Lock()
	assistant.Content = text
	assistant.HTML = markdown.Render(text)
	assistant.IsError = true
	assistant.Streaming = false
	s.mu.Unlock()
	s.view.TranscriptChanged()
}

// applyTitle updates the active conversation title and sidebar entry.
func (s *Session) applyTitle(title string) {
	s.mu.Lock()
	id := s.currentID
	s.title = title
	s.mu.Unlock()
	if id != "" {
		s.sidebar.Rename(id, title)
		s.view.SidebarChanged()
	}
	s.view.TitleChanged(id, title)
}
