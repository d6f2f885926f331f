// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to files.
// Supports HTML (using the safe renderer output) and Markdown.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jeranaias/tagwise-tui/internal/model"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for transcript exporters.
type Exporter interface {
	// Export converts a conversation to the target format.
	Export(conv *model.Conversation) ([]byte, error)

	// FileExtension returns the appropriate file extension (e.g. ".html").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	// Default: current working directory
	OutputDir string

	// IncludeSources includes source bookmark links under assistant
	// messages.
	IncludeSources bool

	// Theme for HTML export ("light" or "dark").
	// Default: "dark"
	Theme string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:      ".",
		IncludeSources: true,
		Theme:          "dark",
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile exports a conversation to a file using the specified
// exporter. Returns the output file path.
func ExportToFile(conv *model.Conversation, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	// A trailing half-streamed message is dropped rather than exported.
	if last := conv.Last(); last != nil && last.Streaming {
		trimmed := *conv
		trimmed.Messages = conv.Messages[:len(conv.Messages)-1]
		conv = &trimmed
	}

	content, err := exporter.Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	// Untitled conversations are named after the first user message.
	name := conv.GetTitle()
	if strings.TrimSpace(conv.Title) == "" {
		if preview := conv.Preview(50); preview != "" {
			name = preview
		}
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("conversation_%s_%s%s",
		sanitizeFilename(name),
		timestamp,
		exporter.FileExtension(),
	)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return outputPath, nil
}

// ExportHTML exports to HTML format.
func ExportHTML(conv *model.Conversation, opts *Options) (string, error) {
	return ExportToFile(conv, NewHTMLExporter(opts), opts)
}

// ExportMarkdown exports to Markdown format.
func ExportMarkdown(conv *model.Conversation, opts *Options) (string, error) {
	return ExportToFile(conv, NewMarkdownExporter(opts), opts)
}

// =============================================================================
// HELPERS
// =============================================================================

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// sanitizeFilename converts a title into a safe filename fragment.
func sanitizeFilename(title string) string {
	s := unsafeFilenameChars.ReplaceAllString(title, "_")
	s = strings.Trim(s, "_")
	if len(s) > 50 {
		s = s[:50]
	}
	if s == "" {
		s = "untitled"
	}
	return strings.ToLower(s)
}

// formatTimestamp formats a timestamp for display in exports.
func formatTimestamp(t time.Time) string {
	return t.Format("January 2, 2006 at 3:04 PM")
}
