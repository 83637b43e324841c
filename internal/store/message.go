package store

import (
	"time"

	"github.com/google/uuid"
)

// Message roles. Messages are persisted with exactly one of these.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// typedAtFormat is a nanosecond-precision timestamp layout. Its lexicographic
// order equals its chronological order, so TypedAt strings sort directly.
const typedAtFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Message is a single conversation turn. Messages are immutable once created;
// the store only ever creates or deletes them.
type Message struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	Content string `json:"content"`
	TypedAt string `json:"typed_at"`
}

// NewMessage creates a Message with a fresh ID and a TypedAt assigned now.
// TypedAt is assigned here, by the pipeline, not by the store backend.
func NewMessage(userID, role, content string) Message {
	return Message{
		ID:      uuid.NewString(),
		UserID:  userID,
		Role:    role,
		Content: content,
		TypedAt: time.Now().UTC().Format(typedAtFormat),
	}
}
