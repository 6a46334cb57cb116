package provider

import "testing"

func TestTrailingAssistantID(t *testing.T) {
	msgs := []Message{
		{ID: "u1", Role: RoleUser, Content: "hi"},
		{ID: "a1", Role: RoleAssistant, Content: "hello"},
		{ID: "t1", Role: RoleTool, Content: "72F"},
		{ID: "a2", Role: RoleAssistant, Content: "it's warm"},
	}

	if got := TrailingAssistantID(msgs); got != "a2" {
		t.Errorf("TrailingAssistantID = %q, want %q", got, "a2")
	}
}

func TestTrailingAssistantID_NoAssistant(t *testing.T) {
	msgs := []Message{
		{ID: "u1", Role: RoleUser, Content: "hi"},
		{ID: "t1", Role: RoleTool, Content: "72F"},
	}

	if got := TrailingAssistantID(msgs); got != "" {
		t.Errorf("TrailingAssistantID = %q, want empty", got)
	}
}

func TestResultText(t *testing.T) {
	r := &Result{Messages: []Message{
		{Role: RoleAssistant, Content: "part one "},
		{Role: RoleTool, Content: "ignored"},
		{Role: RoleAssistant, Content: "part two"},
	}}
	if got := r.Text(); got != "part one part two" {
		t.Errorf("Text() = %q", got)
	}
}
