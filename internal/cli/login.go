// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - Session management commands for the tagwise CLI.
//
// "tagwise login" posts the TagWise login form and persists the session
// cookie to ~/.tagwise/cookies.json; "tagwise logout" discards it.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/tagwise-tui/internal/api"
)

// HandleLogin prompts for credentials and establishes a session.
func HandleLogin(args Args) error {
	if !IsTTY() {
		return fmt.Errorf("login requires an interactive terminal")
	}

	_, client, err := LoadSetup(args)
	if err != nil {
		return err
	}

	username := strings.TrimSpace(args.Query)
	if username == "" {
		fmt.Print("Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return fmt.Errorf("username is required")
	}

	fmt.Print("Password: ")
	password, err := ReadPassword()
	fmt.Println()
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	ctx := context.Background()
	if err := client.Login(ctx, username, password); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := client.PersistCookies(); err != nil {
		return fmt.Errorf("session established but could not be saved: %w", err)
	}

	fmt.Println(SuccessStyle.Render("Logged in as " + username + "."))
	return nil
}

// HandleLogout discards the stored session cookies.
func HandleLogout(args Args) error {
	store, err := api.NewCookieStore()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println(SuccessStyle.Render("Logged out."))
	return nil
}
