// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes the TagWise chatbot's newline-delimited JSON
// response stream into typed events.
//
// Chunks arrive in arbitrary sizes, typically not aligned to event
// boundaries; the decoder buffers trailing partial lines across reads
// and parses each complete line as one JSON record. Malformed lines are
// logged and skipped without aborting the stream.
package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
)

// =============================================================================
// DECODER
// =============================================================================

// Decoder reads NDJSON events from a response body. It is a lazy,
// single-pass, non-restartable sequence: each event is produced exactly
// once and there is no replay.
type Decoder struct {
	reader *bufio.Reader
}

// NewDecoder creates a decoder over r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{reader: bufio.NewReader(r)}
}

// Next returns the next decoded event. It returns io.EOF when the
// underlying transport signals end-of-stream. Unparseable and unknown
// lines are skipped, never surfaced as errors.
func (d *Decoder) Next() (Event, error) {
	for {
		line, err := d.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(bytes.TrimSpace(line)) > 0 {
				// Final line without a trailing newline.
				if ev, ok := decodeLine(line); ok {
					return ev, nil
				}
			}
			return Event{}, err
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		if ev, ok := decodeLine(line); ok {
			return ev, nil
		}
	}
}

// decodeLine parses one NDJSON record. Returns ok=false for lines that
// should be skipped (bad JSON, unknown tag).
func decodeLine(line []byte) (Event, bool) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		log.Printf("stream: skipping malformed event line: %v", err)
		return Event{}, false
	}

	switch rec.Type {
	case "metadata":
		return Event{Kind: KindMetadata, ConversationID: rec.ConversationID.String()}, true
	case "content":
		return Event{Kind: KindContent, Chunk: rec.Chunk}, true
	case "status":
		return Event{Kind: KindStatus, Message: rec.Message}, true
	case "title":
		return Event{Kind: KindTitle, Title: rec.Title}, true
	case "completion":
		return Event{Kind: KindCompletion, Sources: rec.Sources}, true
	case "error":
		return Event{Kind: KindError, Message: rec.Message}, true
	default:
		log.Printf("stream: skipping unknown event type %q", rec.Type)
		return Event{}, false
	}
}

// Process reads the stream and calls fn for each event, in arrival
// order, until a terminal event, end-of-stream, context cancellation,
// or a callback error. A terminal event is delivered to fn before
// Process returns.
func (d *Decoder) Process(ctx context.Context, fn func(Event) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ev, err := d.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		if err := fn(ev); err != nil {
			return err
		}
		if ev.Kind.Terminal() {
			return nil
		}
	}
}
