package model

import "encoding/json"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsHistoryRole reports whether a message with this role may be kept in a
// conversation history. The system prompt is injected per request and never stored.
func (r Role) IsHistoryRole() bool {
	return r == RoleUser || r == RoleAssistant
}

// ChatMessage is a single turn of a conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body accepted by POST /api/chat.
type ChatRequest struct {
	Message *string `json:"message" validate:"required"`
	// Kept raw so that a malformed history never fails decoding of the whole body.
	ConversationHistory json.RawMessage `json:"conversationHistory,omitempty" swaggertype:"array,object"`
}

// ChatResponse is the success body returned by POST /api/chat.
type ChatResponse struct {
	Reply string `json:"reply" example:"Hi there! How can I help?"`
}
