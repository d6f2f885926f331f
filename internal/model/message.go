// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "TagWise"
	default:
		return string(r)
	}
}

// =============================================================================
// SOURCE TYPE
// =============================================================================

// Source is a bookmark (title + URL) cited as supporting evidence for an
// assistant answer.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation transcript.
//
// Content always holds the raw text (user input or assistant markdown).
// HTML holds the sanitized HTML form produced by markdown.Render and is
// only ever derived from Content, never from previously rendered HTML.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string   `json:"content"`
	HTML    string   `json:"-"`
	Sources []Source `json:"sources,omitempty"`

	// Streaming state: true while an exchange is still appending chunks.
	Streaming bool `json:"-"`

	// IsError marks assistant-styled error bubbles.
	IsError bool `json:"-"`
}

// NewUserMessage creates a user message with a generated ID.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an empty assistant message in streaming state.
func NewAssistantMessage() *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Streaming: true,
		Timestamp: time.Now(),
	}
}

// NewAssistantError creates an assistant-styled error bubble.
func NewAssistantError(text string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   text,
		IsError:   true,
		Timestamp: time.Now(),
	}
}

// HasSources reports whether the message carries at least one source.
func (m *Message) HasSources() bool {
	return len(m.Sources) > 0
}
