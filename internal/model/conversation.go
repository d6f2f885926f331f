// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/tagwise-tui/internal/util"
)

// =============================================================================
// FLEXIBLE ID
// =============================================================================

// FlexID is a conversation identifier that unmarshals from either a JSON
// string or a JSON number. The TagWise backend is inconsistent about which
// it emits, so every identifier is normalized to a string at the decode
// boundary.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// String returns the normalized string form of the id.
func (f FlexID) String() string {
	return string(f)
}

// IsZero reports whether the id is unset.
func (f FlexID) IsZero() bool {
	return f == ""
}

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// DefaultTitle is used for conversations the server has not titled yet.
const DefaultTitle = "New Conversation"

// Conversation holds a chat conversation transcript with metadata.
// Messages are append-only; only the trailing streaming assistant
// message is ever mutated in place.
type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Messages  []*Message `json:"messages"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
}

// NewConversation creates an empty conversation.
func NewConversation(id, title string) *Conversation {
	return &Conversation{
		ID:       id,
		Title:    title,
		Messages: make([]*Message, 0),
	}
}

// Append adds a message to the transcript.
func (c *Conversation) Append(msg *Message) {
	c.Messages = append(c.Messages, msg)
}

// Last returns the most recent message, or nil if the transcript is empty.
func (c *Conversation) Last() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// GetTitle returns the conversation title or the default placeholder.
func (c *Conversation) GetTitle() string {
	if strings.TrimSpace(c.Title) != "" {
		return c.Title
	}
	return DefaultTitle
}

// Preview returns a one-line preview built from the first user message.
func (c *Conversation) Preview(maxRunes int) string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return util.TruncateRunes(util.CollapseWhitespace(msg.Content), maxRunes)
		}
	}
	return ""
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// =============================================================================
// HELPERS
// =============================================================================

// FormatMessageCount renders a count like "3 messages" for list surfaces.
func FormatMessageCount(n int) string {
	if n == 1 {
		return "1 message"
	}
	return strconv.Itoa(n) + " messages"
}
