// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// conversations.go - Conversation management commands.
//
// Subcommands:
//   list                 List conversations
//   rename <id> <title>  Rename a conversation
//   delete <id> [--yes]  Delete a conversation
//   export <id>          Export a transcript (--format html|md, --output DIR)
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/tagwise-tui/internal/api"
	"github.com/jeranaias/tagwise-tui/internal/export"
	"github.com/jeranaias/tagwise-tui/internal/model"
)

// HandleConversations dispatches the conversations subcommands.
func HandleConversations(args Args) error {
	_, client, err := LoadSetup(args)
	if err != nil {
		return err
	}
	defer client.PersistCookies()

	ctx := context.Background()

	switch args.Subcommand {
	case "", "list", "ls":
		return listConversations(ctx, client, args)

	case "rename":
		if len(args.Raw) < 2 {
			return fmt.Errorf("usage: tagwise conversations rename <id> <title>")
		}
		id := args.Raw[0]
		title := strings.Join(args.Raw[1:], " ")
		if err := client.RenameConversation(ctx, id, title); err != nil {
			return err
		}
		fmt.Println(SuccessStyle.Render("Renamed conversation " + id + " to: " + title))
		return nil

	case "delete", "rm":
		if len(args.Raw) < 1 {
			return fmt.Errorf("usage: tagwise conversations delete <id> [--yes]")
		}
		id := args.Raw[0]
		if args.Options["yes"] != "true" && !confirmStdin("Delete conversation "+id+"?") {
			fmt.Println("Aborted.")
			return nil
		}
		if err := client.DeleteConversation(ctx, id); err != nil {
			return err
		}
		fmt.Println(SuccessStyle.Render("Deleted conversation " + id + "."))
		return nil

	case "export":
		if len(args.Raw) < 1 {
			return fmt.Errorf("usage: tagwise conversations export <id> [--format html|md] [--output DIR]")
		}
		return exportConversation(ctx, client, args)

	default:
		return fmt.Errorf("unknown subcommand %q, expected list, rename, delete or export", args.Subcommand)
	}
}

// listConversations prints the conversation list.
func listConversations(ctx context.Context, client *api.Client, args Args) error {
	infos, err := client.ListConversations(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println(MutedStyle.Render("No conversations yet."))
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s %s\n", MutedStyle.Render("["+info.ID.String()+"]"), info.Title)
	}
	if !args.Quiet {
		fmt.Println()
		fmt.Println(MutedStyle.Render(fmt.Sprintf("%d conversation(s)", len(infos))))
	}
	return nil
}

// exportConversation fetches a conversation and writes the transcript
// to a file.
func exportConversation(ctx context.Context, client *api.Client, args Args) error {
	id := args.Raw[0]
	detail, err := client.GetConversation(ctx, id)
	if err != nil {
		return err
	}

	conv := model.NewConversation(id, detail.Title)
	for _, wm := range detail.Messages {
		if wm.IsUser {
			conv.Append(model.NewUserMessage(wm.Content))
		} else {
			m := model.NewAssistantMessage()
			m.Content = wm.Content
			m.Streaming = false
			conv.Append(m)
		}
	}

	opts := export.DefaultOptions()
	if dir := args.Options["output"]; dir != "" {
		opts.OutputDir = dir
	}

	var path string
	switch args.Options["format"] {
	case "", "html":
		path, err = export.ExportHTML(conv, opts)
	case "md", "markdown":
		path, err = export.ExportMarkdown(conv, opts)
	default:
		return fmt.Errorf("unknown format %q, expected html or md", args.Options["format"])
	}
	if err != nil {
		return err
	}

	fmt.Println(SuccessStyle.Render("Exported to " + path))
	return nil
}

// confirmStdin asks a yes/no question on stdin.
func confirmStdin(question string) bool {
	if !IsTTY() {
		return false
	}
	fmt.Print(question + " [y/N] ")
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
