package models

import "time"

// ChatRequest is the backend AI chat payload.
type ChatRequest struct {
	Prompt string `json:"prompt" form:"prompt" validate:"required,max=4000"`
}

// ChatResponse carries the AI reply.
type ChatResponse struct {
	Response string `json:"response"`
}

// ChatRole marks who authored a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of the tutor conversation kept in the session.
type ChatMessage struct {
	Role    ChatRole  `json:"role"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// MarketingRequest describes the campaign content an admin wants generated.
type MarketingRequest struct {
	Topic    string `json:"topic" form:"topic" validate:"required,max=500"`
	Channel  string `json:"channel" form:"channel" validate:"required,oneof=email whatsapp social"`
	Audience string `json:"audience" form:"audience" validate:"required,max=120"`
}
