package core

import (
	"sync"
	"testing"
)

func TestMessage_ConstructorsAndClone(t *testing.T) {
	msg := NewUserMessage("hi")
	if msg.Role != RoleUser || msg.Content != "hi" || msg.ID == "" || msg.Timestamp.IsZero() {
		t.Fatalf("NewUserMessage did not initialize fields correctly: %+v", msg)
	}

	args := map[string]any{"expression": "2+2"}
	toolMsg := NewToolMessage("calculator", "call-1", "4", args)
	if toolMsg.Role != RoleTool || toolMsg.ToolName != "calculator" || toolMsg.ToolCallID != "call-1" {
		t.Fatalf("NewToolMessage malformed: %+v", toolMsg)
	}
	if !toolMsg.IsToolResult() {
		t.Error("tool message should report IsToolResult")
	}

	args["expression"] = "changed"
	if toolMsg.ToolArgs["expression"] != "2+2" {
		t.Error("constructor should copy the args map")
	}

	clone := toolMsg.Clone()
	clone.ToolArgs["expression"] = "mutated"
	if toolMsg.ToolArgs["expression"] != "2+2" {
		t.Error("Clone should not share the args map")
	}

	if NewSystemMessage("s").Role != RoleSystem || NewAssistantMessage("a").Role != RoleAssistant {
		t.Error("role constructors mismatched")
	}
}

func TestConversation_AppendAndSnapshot(t *testing.T) {
	c := NewConversation()
	if idx := c.Append(NewUserMessage("first")); idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}
	if idx := c.Append(NewAssistantMessage("second")); idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", c.Len())
	}

	snap := c.Snapshot()
	snap[0].Content = "changed"
	if c.Snapshot()[0].Content != "first" {
		t.Error("snapshot should be a defensive copy")
	}
}

// Repeated snapshots of an unmodified log must be equal, element for element.
func TestConversation_SnapshotIdempotence(t *testing.T) {
	c := NewConversation(
		NewSystemMessage("sys"),
		NewUserMessage("task"),
		NewAssistantMessage("answer"),
	)

	first := c.Snapshot()
	second := c.Snapshot()
	if len(first) != len(second) {
		t.Fatalf("snapshot lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Content != second[i].Content || first[i].Role != second[i].Role {
			t.Fatalf("snapshot %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestConversation_WindowAndLookups(t *testing.T) {
	c := NewConversation()
	c.Append(NewSystemMessage("sys"))
	c.Append(NewUserMessage("u1"))
	c.Append(NewAssistantMessage("a1"))
	c.Append(NewToolMessage("calculator", "call-1", "4", nil))

	win := c.Window(2)
	if len(win) != 2 || win[0].Role != RoleAssistant || win[1].Role != RoleTool {
		t.Fatalf("Window(2) returned wrong suffix: %+v", win)
	}
	if len(c.Window(0)) != 4 || len(c.Window(99)) != 4 {
		t.Error("Window should return the whole log for n <= 0 or n > len")
	}

	last, ok := c.Last()
	if !ok || last.Role != RoleTool {
		t.Fatalf("Last returned %+v, %v", last, ok)
	}

	assistant, ok := c.LastByRole(RoleAssistant)
	if !ok || assistant.Content != "a1" {
		t.Fatalf("LastByRole(assistant) returned %+v, %v", assistant, ok)
	}
	if _, ok := NewConversation().Last(); ok {
		t.Error("Last on empty log should report false")
	}

	if n := c.CountByRole(RoleTool); n != 1 {
		t.Fatalf("expected 1 tool message, got %d", n)
	}
}

func TestConversation_CloneIndependence(t *testing.T) {
	c := NewConversation(NewUserMessage("hi"))
	clone := c.Clone()
	clone.Append(NewAssistantMessage("hello"))

	if c.Len() != 1 || clone.Len() != 2 {
		t.Fatalf("clone should not share storage: orig=%d clone=%d", c.Len(), clone.Len())
	}
}

func TestConversation_ConcurrentReaders(t *testing.T) {
	c := NewConversation()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.Append(NewAssistantMessage("msg"))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = c.Snapshot()
			_ = c.Len()
		}
	}()
	wg.Wait()

	if c.Len() != 100 {
		t.Fatalf("expected 100 messages, got %d", c.Len())
	}
}

func TestRunResult_Answered(t *testing.T) {
	if !(&RunResult{Reason: TerminationAnswered}).Answered() {
		t.Error("answered result should report Answered")
	}
	if (&RunResult{Reason: TerminationMaxIterations}).Answered() {
		t.Error("max_iterations result should not report Answered")
	}
	if (&RunResult{Reason: TerminationFatalError}).Answered() {
		t.Error("fatal result should not report Answered")
	}
}
