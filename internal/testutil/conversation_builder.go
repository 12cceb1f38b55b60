package testutil

import "github.com/hupe1980/reagent/core"

// ConversationBuilder provides a fluent helper for constructing conversations
// in tests. Example:
//
//	conv := testutil.NewConversationBuilder().
//		System("be brief").
//		User("2+2?").
//		Assistant("4").
//		Build()
//
// Chain only the turns you need; order of calls is the order of turns.
type ConversationBuilder struct {
	messages []core.Message
}

// NewConversationBuilder creates an empty builder.
func NewConversationBuilder() *ConversationBuilder { return &ConversationBuilder{} }

// System appends a system turn (chainable).
func (b *ConversationBuilder) System(content string) *ConversationBuilder {
	b.messages = append(b.messages, core.NewSystemMessage(content))
	return b
}

// User appends a user turn (chainable).
func (b *ConversationBuilder) User(content string) *ConversationBuilder {
	b.messages = append(b.messages, core.NewUserMessage(content))
	return b
}

// Assistant appends an assistant turn (chainable).
func (b *ConversationBuilder) Assistant(content string) *ConversationBuilder {
	b.messages = append(b.messages, core.NewAssistantMessage(content))
	return b
}

// ToolResult appends a tool turn carrying an invocation's output (chainable).
func (b *ConversationBuilder) ToolResult(toolName, content string, args map[string]any) *ConversationBuilder {
	b.messages = append(b.messages, core.NewToolMessage(toolName, core.NewID(), content, args))
	return b
}

// Build wraps the accumulated turns in a conversation.
func (b *ConversationBuilder) Build() *core.Conversation {
	return core.NewConversation(b.messages...)
}

// Messages returns a copy of the accumulated turns without wrapping them.
func (b *ConversationBuilder) Messages() []core.Message {
	return append([]core.Message(nil), b.messages...)
}
