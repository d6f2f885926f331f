// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single query command handler for the tagwise CLI.
//
// Handles "tagwise ask" which sends one question to the TagWise chatbot
// and prints the rendered answer with its sources.
//
// Examples:
//   tagwise ask "what did I save about go generics?"
//   tagwise ask --conversation 12 "and what about channels?"
//   tagwise --no-stream ask "summarize my reading list"
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/tagwise-tui/internal/model"
	"github.com/jeranaias/tagwise-tui/internal/session"
)

// markdownRenderer is the shared glamour renderer for answer output.
var markdownRenderer *glamour.TermRenderer

func initMarkdownRenderer() error {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	return err
}

// renderMarkdown renders markdown for terminal display, falling back to
// plain text when the renderer is unavailable (piped output).
func renderMarkdown(text string) string {
	if !IsStdoutTTY() || markdownRenderer == nil {
		return text
	}
	out, err := markdownRenderer.Render(text)
	if err != nil {
		return text
	}
	return out
}

// HandleAsk runs a one-shot question.
func HandleAsk(args Args) error {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		return fmt.Errorf("usage: tagwise ask \"question\"")
	}

	cfg, client, err := LoadSetup(args)
	if err != nil {
		return err
	}
	defer client.PersistCookies()

	if IsStdoutTTY() {
		if err := initMarkdownRenderer(); err != nil {
			return err
		}
	}

	ctx := context.Background()
	sess := session.New(client, askView{quiet: args.Quiet}).
		WithStreaming(cfg.StreamingEnabled)

	sess.Open(ctx)
	if sess.APIError() {
		return fmt.Errorf("the TagWise chatbot is unavailable, check %s", client.BaseURL())
	}

	// Continue an existing conversation when requested.
	if id := args.Options["conversation"]; id != "" {
		if err := sess.LoadConversation(ctx, id); err != nil {
			return err
		}
	}

	if err := sess.Send(ctx, query); err != nil {
		return err
	}

	msgs := sess.Messages()
	last := msgs[len(msgs)-1]
	if last.IsError {
		return fmt.Errorf("%s", last.Content)
	}

	fmt.Print(renderMarkdown(last.Content))
	if !IsStdoutTTY() {
		fmt.Println()
	}
	printSources(last.Sources)

	return nil
}

// printSources prints the cited bookmark list.
func printSources(sources []model.Source) {
	if len(sources) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(LabelStyle.Render("Sources:"))
	for _, src := range sources {
		title := src.Title
		if title == "" {
			title = src.URL
		}
		fmt.Printf("  %s %s\n", ValueStyle.Render(title), SourceStyle.Render("<"+src.URL+">"))
	}
}

// askView shows transient status notices on stderr during a one-shot
// ask; everything else is ignored.
type askView struct {
	session.NopView
	quiet bool
}

func (v askView) NoticeShown(text string) {
	if !v.quiet {
		fmt.Fprintln(os.Stderr, MutedStyle.Render(text))
	}
}

func (v askView) SlowResponse() {
	if !v.quiet {
		fmt.Fprintln(os.Stderr, WarningStyle.Render(session.SlowResponseText))
	}
}
