// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
)

func TestFlexIDUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string id", `"conv_42"`, "conv_42"},
		{"integer id", `42`, "42"},
		{"large integer id", `9007199254740993`, "9007199254740993"},
		{"null id", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id FlexID
			if err := json.Unmarshal([]byte(tt.input), &id); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.input, err)
			}
			if id.String() != tt.want {
				t.Errorf("got %q, want %q", id, tt.want)
			}
		})
	}
}

func TestFlexIDInStruct(t *testing.T) {
	var payload struct {
		ConversationID FlexID `json:"conversation_id"`
	}
	if err := json.Unmarshal([]byte(`{"conversation_id": 7}`), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.ConversationID != "7" {
		t.Errorf("got %q, want %q", payload.ConversationID, "7")
	}
}

func TestConversationAppendOrder(t *testing.T) {
	conv := NewConversation("c1", "")

	conv.Append(NewUserMessage("first"))
	conv.Append(NewAssistantMessage())
	conv.Append(NewUserMessage("second"))

	if conv.MessageCount() != 3 {
		t.Fatalf("MessageCount = %d, want 3", conv.MessageCount())
	}
	if conv.Messages[0].Content != "first" || conv.Messages[2].Content != "second" {
		t.Error("messages not in insertion order")
	}
	if conv.Last().Content != "second" {
		t.Errorf("Last() = %q", conv.Last().Content)
	}
}

func TestConversationTitleFallback(t *testing.T) {
	conv := NewConversation("c1", "  ")
	if conv.GetTitle() != DefaultTitle {
		t.Errorf("GetTitle = %q, want %q", conv.GetTitle(), DefaultTitle)
	}
	conv.Title = "Bookmarks about Go"
	if conv.GetTitle() != "Bookmarks about Go" {
		t.Errorf("GetTitle = %q", conv.GetTitle())
	}
}

func TestConversationPreview(t *testing.T) {
	conv := NewConversation("c1", "")
	conv.Append(NewAssistantMessage())
	conv.Append(NewUserMessage("what bookmarks do I have\nabout databases?"))

	got := conv.Preview(80)
	want := "what bookmarks do I have about databases?"
	if got != want {
		t.Errorf("Preview = %q, want %q", got, want)
	}
}

func TestMessageConstructors(t *testing.T) {
	user := NewUserMessage("hi")
	if user.Role != RoleUser || user.ID == "" || user.Streaming {
		t.Error("NewUserMessage state wrong")
	}

	asst := NewAssistantMessage()
	if asst.Role != RoleAssistant || !asst.Streaming {
		t.Error("NewAssistantMessage should start streaming")
	}

	errMsg := NewAssistantError("boom")
	if !errMsg.IsError || errMsg.Role != RoleAssistant {
		t.Error("NewAssistantError state wrong")
	}
}
