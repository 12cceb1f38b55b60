package core

import "sync"

// Conversation is an ordered, append-only log of messages. It is exclusively
// owned by one in-flight run: the run appends, everyone else reads snapshots.
// Reads and writes are guarded so that observers (loggers, stores, tests) may
// snapshot a log while its run is still appending.
//
// There is no delete operation. A new top-level task gets a new Conversation
// unless the agent explicitly supports continuation.
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
}

// NewConversation creates a log, optionally seeded with initial messages.
func NewConversation(initial ...Message) *Conversation {
	c := &Conversation{}
	for _, msg := range initial {
		c.Append(msg)
	}
	return c
}

// Append adds a message to the end of the log and returns its index.
// The message is cloned on the way in so the log owns its records.
func (c *Conversation) Append(msg Message) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, msg.Clone())
	return len(c.messages) - 1
}

// Snapshot returns a defensive copy of the full log in insertion order.
// Repeated calls on an unmodified log return equal sequences.
func (c *Conversation) Snapshot() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Message, len(c.messages))
	for i, msg := range c.messages {
		out[i] = msg.Clone()
	}
	return out
}

// Window returns a copy of the last n messages (the whole log if n <= 0 or
// n exceeds the length). Prompt builders use it to bound context size without
// ever shrinking the log itself.
func (c *Conversation) Window(n int) []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := 0
	if n > 0 && n < len(c.messages) {
		start = len(c.messages) - n
	}
	out := make([]Message, len(c.messages)-start)
	for i, msg := range c.messages[start:] {
		out[i] = msg.Clone()
	}
	return out
}

// Len returns the number of messages in the log.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.messages)
}

// Last returns the most recent message, or false when the log is empty.
func (c *Conversation) Last() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1].Clone(), true
}

// LastByRole returns the most recent message with the given role.
func (c *Conversation) LastByRole(role Role) (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == role {
			return c.messages[i].Clone(), true
		}
	}
	return Message{}, false
}

// CountByRole returns how many messages carry the given role.
func (c *Conversation) CountByRole(role Role) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, msg := range c.messages {
		if msg.Role == role {
			n++
		}
	}
	return n
}

// Clone returns an independent copy of the conversation. Used by session
// stores handing histories across runs.
func (c *Conversation) Clone() *Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	clone := &Conversation{messages: make([]Message, len(c.messages))}
	for i, msg := range c.messages {
		clone.messages[i] = msg.Clone()
	}
	return clone
}
