package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleSystem marks instructions injected by the orchestration layer.
	RoleSystem Role = "system"
	// RoleUser marks input supplied by the caller.
	RoleUser Role = "user"
	// RoleAssistant marks raw model output.
	RoleAssistant Role = "assistant"
	// RoleTool marks the result (or error text) of a tool invocation.
	RoleTool Role = "tool"
)

// Message is a single immutable turn record. Once appended to a Conversation
// it must never be mutated; corrections happen by appending further messages.
//
// ToolName, ToolArgs and ToolCallID are only set on tool-role messages, where
// they tie the recorded result back to the tool call that produced it.
type Message struct {
	ID         string         `json:"id"`
	Role       Role           `json:"role"`
	Content    string         `json:"content"`
	ToolName   string         `json:"tool_name,omitempty"`
	ToolArgs   map[string]any `json:"tool_args,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewID returns a globally unique identifier used for messages, tool calls
// and runs.
func NewID() string {
	return uuid.NewString()
}

// NewMessage creates a message with a fresh ID and timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an assistant-role message holding raw model output.
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// NewToolMessage creates a tool-role message recording a tool result or error
// text. The args map is copied so later mutation by the caller cannot alter
// the recorded turn.
func NewToolMessage(toolName, toolCallID, content string, args map[string]any) Message {
	msg := NewMessage(RoleTool, content)
	msg.ToolName = toolName
	msg.ToolCallID = toolCallID
	msg.ToolArgs = copyArgs(args)
	return msg
}

// Clone returns a deep copy of the message. The copy owns its own args map.
func (m Message) Clone() Message {
	clone := m
	clone.ToolArgs = copyArgs(m.ToolArgs)
	return clone
}

// IsToolResult reports whether the message records a tool invocation outcome.
func (m Message) IsToolResult() bool {
	return m.Role == RoleTool
}

func copyArgs(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	cp := make(map[string]any, len(args))
	for k, v := range args {
		cp[k] = v
	}
	return cp
}
