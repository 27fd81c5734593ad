package models

import "fmt"

// ChatType distinguishes one-on-one conversations from group chatter.
type ChatType string

const (
	ChatTypeIndividual ChatType = "individual"
	ChatTypeGroup      ChatType = "group"
)

// NormalizedMessage is the wire-normalized inbound chat message handed to the
// triage pipeline. Normalization, source validation and tenant resolution
// happen upstream; this struct is immutable for the duration of processing.
type NormalizedMessage struct {
	MessageID  string   `json:"message_id"`
	TenantID   string   `json:"tenant_id"`
	UserID     string   `json:"user_id"`
	SenderID   string   `json:"sender_id"`
	SenderName string   `json:"sender_name,omitempty"`
	Content    string   `json:"content"`
	Caption    string   `json:"caption,omitempty"`
	ChatType   ChatType `json:"chat_type"`
	Timestamp  int64    `json:"timestamp"`
	TraceID    string   `json:"trace_id,omitempty"`
}

// Text returns all textual content of the message. Media-only messages with
// a caption contribute the caption.
func (m NormalizedMessage) Text() string {
	if m.Content != "" && m.Caption != "" {
		return m.Content + " " + m.Caption
	}
	if m.Content != "" {
		return m.Content
	}
	return m.Caption
}

func (m NormalizedMessage) IsGroup() bool {
	return m.ChatType == ChatTypeGroup
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateNormalizedMessage checks the upstream contract. A failure here is
// a contract violation and must be surfaced to the caller, not defaulted.
func ValidateNormalizedMessage(msg *NormalizedMessage) error {
	if msg == nil {
		return &ValidationError{Field: "message", Message: "message cannot be nil"}
	}

	if msg.MessageID == "" {
		return &ValidationError{Field: "message_id", Message: "message ID is required"}
	}

	if msg.TenantID == "" {
		return &ValidationError{Field: "tenant_id", Message: "tenant ID is required"}
	}

	if msg.UserID == "" {
		return &ValidationError{Field: "user_id", Message: "user ID is required"}
	}

	if msg.SenderID == "" {
		return &ValidationError{Field: "sender_id", Message: "sender ID is required"}
	}

	switch msg.ChatType {
	case ChatTypeIndividual, ChatTypeGroup:
	default:
		return &ValidationError{
			Field:   "chat_type",
			Message: fmt.Sprintf("unknown chat type %q", msg.ChatType),
		}
	}

	return nil
}
