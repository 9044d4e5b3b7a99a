// Package llm defines the generation collaborator consumed by the chat
// pipeline: plain-text conversation messages and the Generator interface
// that produces a reply plus a save-intent flag.
package llm

import "strings"

// Roles used in conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message represents a single message in a conversation.
// Messages are immutable once appended to a transcript; insertion order is
// chronological order.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a message with the given role and content.
func NewMessage(role, content string) Message {
	return Message{Role: role, Content: content}
}

// IsBlank reports whether the message content is empty after trimming
// whitespace.
func (m Message) IsBlank() bool {
	return strings.TrimSpace(m.Content) == ""
}
