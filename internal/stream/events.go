// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"github.com/jeranaias/tagwise-tui/internal/model"
)

// =============================================================================
// EVENT UNION
// =============================================================================

// EventKind identifies the variant of a stream event. The set is closed:
// within one response the server sends zero-or-one Metadata first, then
// interleaved Content/Status events, then exactly one terminal
// Completion or Error.
type EventKind int

const (
	// KindMetadata establishes or overwrites the conversation id for
	// this exchange.
	KindMetadata EventKind = iota

	// KindContent carries a text fragment to append to the running
	// assistant-response buffer.
	KindContent

	// KindStatus carries transient informational text (for example
	// "Generating title..."), not part of the permanent transcript.
	KindStatus

	// KindTitle updates the conversation title in real time.
	KindTitle

	// KindCompletion terminates the exchange and carries the final
	// sources list.
	KindCompletion

	// KindError terminates the exchange; its message replaces the
	// assistant content.
	KindError
)

// String returns the wire tag for the event kind.
func (k EventKind) String() string {
	switch k {
	case KindMetadata:
		return "metadata"
	case KindContent:
		return "content"
	case KindStatus:
		return "status"
	case KindTitle:
		return "title"
	case KindCompletion:
		return "completion"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether the event ends the exchange.
func (k EventKind) Terminal() bool {
	return k == KindCompletion || k == KindError
}

// Event is one decoded NDJSON record. Only the fields matching Kind are
// meaningful.
type Event struct {
	Kind EventKind

	// KindMetadata
	ConversationID string

	// KindContent
	Chunk string

	// KindStatus, KindError
	Message string

	// KindTitle
	Title string

	// KindCompletion
	Sources []model.Source
}

// record is the wire shape of one NDJSON line.
type record struct {
	Type           string         `json:"type"`
	ConversationID model.FlexID   `json:"conversation_id"`
	Chunk          string         `json:"chunk"`
	Message        string         `json:"message"`
	Title          string         `json:"title"`
	Sources        []model.Source `json:"sources"`
}
