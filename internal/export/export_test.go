// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/tagwise-tui/internal/model"
)

func sampleConversation() *model.Conversation {
	conv := model.NewConversation("7", "Go reading list")
	conv.CreatedAt = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

	conv.Append(model.NewUserMessage("what did I save about go?"))

	reply := model.NewAssistantMessage()
	reply.Content = "You saved **three** articles about Go concurrency."
	reply.Sources = []model.Source{
		{Title: "Go blog", URL: "https://go.dev/blog"},
		{URL: "https://example.com/pipelines"},
	}
	reply.Streaming = false
	conv.Append(reply)

	return conv
}

func TestHTMLExport(t *testing.T) {
	data, err := NewHTMLExporter(nil).Export(sampleConversation())
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "<title>Go reading list</title>")
	assert.Contains(t, out, "<strong>three</strong>")
	assert.Contains(t, out, `href="https://go.dev/blog"`)
	// Sources without a title fall back to the URL.
	assert.Contains(t, out, ">https://example.com/pipelines</a>")
}

func TestHTMLExportEscapesContent(t *testing.T) {
	conv := model.NewConversation("1", `<img src=x> "quoted" & more`)
	msg := model.NewAssistantMessage()
	msg.Content = "try <script>alert(1)</script>"
	conv.Append(msg)

	data, err := NewHTMLExporter(nil).Export(conv)
	require.NoError(t, err)
	out := string(data)

	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestHTMLExportEmptyConversation(t *testing.T) {
	_, err := NewHTMLExporter(nil).Export(model.NewConversation("1", "empty"))
	assert.Error(t, err)

	_, err = NewHTMLExporter(nil).Export(nil)
	assert.Error(t, err)
}

func TestMarkdownExport(t *testing.T) {
	data, err := NewMarkdownExporter(nil).Export(sampleConversation())
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "# Go reading list\n"))
	assert.Contains(t, out, "## You\n")
	assert.Contains(t, out, "## TagWise\n")
	assert.Contains(t, out, "- [Go blog](https://go.dev/blog)")
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir

	path, err := ExportHTML(sampleConversation(), opts)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, dir))
	assert.True(t, strings.HasSuffix(path, ".html"))
	assert.Contains(t, path, "go_reading_list")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Go reading list")
}

func TestExportToFileNamesUntitledFromPreview(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir

	conv := model.NewConversation("9", "")
	conv.Append(model.NewUserMessage("what about   go channels?"))
	reply := model.NewAssistantMessage()
	reply.Content = "Two saved articles."
	reply.Streaming = false
	conv.Append(reply)

	path, err := ExportMarkdown(conv, opts)
	require.NoError(t, err)
	assert.Contains(t, path, "what_about_go_channels")
}

func TestExportToFileDropsTrailingStreamingMessage(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir

	conv := sampleConversation()
	pending := model.NewAssistantMessage()
	pending.Content = "half an ans"
	conv.Append(pending)

	path, err := ExportHTML(conv, opts)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "half an ans")
	assert.Contains(t, string(data), "<strong>three</strong>")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Go reading list", "go_reading_list"},
		{"what/about: slashes?", "what_about_slashes"},
		{"", "untitled"},
		{"***", "untitled"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
}
