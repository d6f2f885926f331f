// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/tagwise-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format. Message
// bodies are already markdown and pass through untouched.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown format.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", conv.GetTitle()))
	if !conv.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", formatTimestamp(conv.CreatedAt)))
	}
	sb.WriteString(fmt.Sprintf("- **Messages**: %d\n", len(conv.Messages)))
	sb.WriteString(fmt.Sprintf("- **Exported**: %s\n\n", formatTimestamp(time.Now())))
	sb.WriteString("---\n\n")

	for _, msg := range conv.Messages {
		sb.WriteString(fmt.Sprintf("## %s\n\n", msg.Role.DisplayName()))
		sb.WriteString(strings.TrimRight(msg.Content, "\n"))
		sb.WriteString("\n\n")

		if e.options.IncludeSources && msg.HasSources() {
			sb.WriteString("**Sources**\n\n")
			for _, src := range msg.Sources {
				title := src.Title
				if title == "" {
					title = src.URL
				}
				sb.WriteString(fmt.Sprintf("- [%s](%s)\n", title, src.URL))
			}
			sb.WriteString("\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}
