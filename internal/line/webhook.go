// Package line provides the LINE Messaging API surface: webhook payload
// parsing, delivery signature verification, and the outbound reply client.
package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Event types acted on by the relay. Everything else is a no-op.
const (
	EventTypeMessage = "message"
	MessageTypeText  = "text"
)

// Webhook is the body of one webhook delivery.
type Webhook struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is a single webhook event.
type Event struct {
	Type       string       `json:"type"`
	ReplyToken string       `json:"replyToken"`
	Message    EventMessage `json:"message"`
	Source     EventSource  `json:"source"`
	Timestamp  int64        `json:"timestamp"`
}

// EventMessage is the message attached to a message event.
type EventMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// EventSource identifies where the event came from.
type EventSource struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// IsTextMessage reports whether the event is an actionable text message with
// a resolvable user.
func (e Event) IsTextMessage() bool {
	return e.Type == EventTypeMessage &&
		e.Message.Type == MessageTypeText &&
		e.Source.UserID != ""
}

// ValidateSignature checks the x-line-signature header value against the raw
// request body: base64 of the body's HMAC-SHA256 under the channel secret.
func ValidateSignature(channelSecret string, body []byte, signature string) bool {
	decoded, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return hmac.Equal(decoded, mac.Sum(nil))
}
