// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the tagwise CLI.
//
// Handles "tagwise chat", a readline-style REPL over the TagWise
// chatbot with conversation management via slash commands.
//
// Interactive commands (during chat):
//   /help, /h           Show available commands
//   /new, /n            Start a new conversation
//   /list, /l           List conversations
//   /switch <id>        Switch to a conversation
//   /rename <title>     Rename the active conversation
//   /delete <id>        Delete a conversation (asks to confirm)
//   /reset              Clear the transcript and server-side state
//   /quit, /q           Exit chat
//   Ctrl+D              Exit chat
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/tagwise-tui/internal/config"
	"github.com/jeranaias/tagwise-tui/internal/model"
	"github.com/jeranaias/tagwise-tui/internal/session"
)

// =============================================================================
// INPUT HANDLING
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// USABILITY: Supports arrow keys for history navigation and line editing.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Confirm asks a yes/no question and returns the answer.
func (c *ChatCLI) Confirm(question string) bool {
	answer, err := c.line.Prompt(question + " [y/N] ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// STREAMING OUTPUT
// =============================================================================

// chatView streams assistant text to stdout as it accumulates.
type chatView struct {
	session.NopView
	sess    *session.Session
	printed int
}

func (v *chatView) TranscriptChanged() {
	msgs := v.sess.Messages()
	if len(msgs) == 0 {
		return
	}
	last := msgs[len(msgs)-1]
	if last.Role != model.RoleAssistant {
		v.printed = 0
		return
	}
	if len(last.Content) > v.printed {
		fmt.Print(last.Content[v.printed:])
		v.printed = len(last.Content)
	}
}

func (v *chatView) NoticeShown(text string) {
	fmt.Fprintln(os.Stderr, "\n"+MutedStyle.Render(text))
}

func (v *chatView) TitleChanged(id, title string) {
	fmt.Fprintln(os.Stderr, MutedStyle.Render("Conversation titled: "+title))
}

func (v *chatView) SlowResponse() {
	fmt.Fprintln(os.Stderr, WarningStyle.Render(session.SlowResponseText))
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// HandleChat runs the interactive chat REPL.
func HandleChat(args Args) error {
	cfg, client, err := LoadSetup(args)
	if err != nil {
		return err
	}
	defer client.PersistCookies()

	view := &chatView{}
	sess := session.New(client, view).WithStreaming(cfg.StreamingEnabled)
	view.sess = sess

	ctx := context.Background()
	sess.Open(ctx)
	if sess.APIError() {
		return fmt.Errorf("the TagWise chatbot is unavailable, check %s", client.BaseURL())
	}

	if !args.Quiet {
		fmt.Println(TitleStyle.Render("tagwise chat"))
		fmt.Println(MutedStyle.Render(session.WelcomeText))
		fmt.Println(MutedStyle.Render("Type /help for commands, /quit to exit."))
		fmt.Println()
	}

	input := NewChatCLI()
	defer input.Close()

	for {
		line, err := input.ReadInput(PromptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C or Ctrl+D: exit gracefully.
			fmt.Println()
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := handleSlashCommand(ctx, sess, input, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			}
			if quit {
				return nil
			}
			continue
		}

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}

		view.printed = 0
		if err := sess.Send(ctx, line); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
			continue
		}

		fmt.Println()
		msgs := sess.Messages()
		printSources(msgs[len(msgs)-1].Sources)
		fmt.Println()
	}
}

// handleSlashCommand dispatches a /command. Returns true to exit.
func handleSlashCommand(ctx context.Context, sess *session.Session, input *ChatCLI, line string) (bool, error) {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	rest := fields[1:]

	switch cmd {
	case "/help", "/h":
		fmt.Println(`Commands:
  /new            Start a new conversation
  /list           List conversations
  /switch <id>    Switch to a conversation
  /rename <title> Rename the active conversation
  /delete <id>    Delete a conversation
  /reset          Clear the transcript
  /quit           Exit chat`)
		return false, nil

	case "/new", "/n":
		if err := sess.NewConversation(ctx); err != nil {
			return false, err
		}
		fmt.Println(SuccessStyle.Render("Started a new conversation."))
		return false, nil

	case "/list", "/l":
		sess.RefreshList(ctx)
		entries := sess.Sidebar().Entries()
		if len(entries) == 0 {
			fmt.Println(MutedStyle.Render(sess.Sidebar().Placeholder()))
			return false, nil
		}
		for _, e := range entries {
			marker := "  "
			if e.Active {
				marker = "* "
			}
			fmt.Printf("%s%s %s\n", marker, MutedStyle.Render("["+e.ID+"]"), e.Title)
		}
		return false, nil

	case "/switch":
		if len(rest) == 0 {
			return false, fmt.Errorf("usage: /switch <id>")
		}
		if err := sess.LoadConversation(ctx, rest[0]); err != nil {
			return false, err
		}
		fmt.Println(SuccessStyle.Render("Switched to: " + sess.Title()))
		replayTranscript(sess)
		return false, nil

	case "/rename":
		if len(rest) == 0 {
			return false, fmt.Errorf("usage: /rename <title>")
		}
		id := sess.CurrentID()
		if id == "" {
			return false, fmt.Errorf("no active conversation")
		}
		title := strings.Join(rest, " ")
		if err := sess.RenameConversation(ctx, id, title); err != nil {
			return false, err
		}
		fmt.Println(SuccessStyle.Render("Renamed to: " + title))
		return false, nil

	case "/delete":
		if len(rest) == 0 {
			return false, fmt.Errorf("usage: /delete <id>")
		}
		if !input.Confirm("Delete conversation " + rest[0] + "?") {
			return false, nil
		}
		if err := sess.DeleteConversation(ctx, rest[0]); err != nil {
			return false, err
		}
		fmt.Println(SuccessStyle.Render("Deleted."))
		return false, nil

	case "/reset":
		sess.Reset(ctx)
		fmt.Println(SuccessStyle.Render("Transcript cleared."))
		return false, nil

	case "/quit", "/q", "/exit":
		return true, nil

	default:
		return false, fmt.Errorf("unknown command %q, try /help", cmd)
	}
}

// replayTranscript prints the loaded history after a conversation
// switch.
func replayTranscript(sess *session.Session) {
	for _, msg := range sess.Messages() {
		fmt.Printf("%s %s\n", PromptStyle.Render(msg.Role.DisplayName()+":"), msg.Content)
	}
}
