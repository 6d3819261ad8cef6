package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message directions.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Message statuses. Once written, a message record only ever changes status.
const (
	MessageStatusReceived  = "received"
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
	MessageStatusFailed    = "failed"
)

// Message is one inbound or outbound WhatsApp communication. Messages live
// in the key-value store under the owning dealer's namespace.
type Message struct {
	ID        string          `json:"id"`
	DealerID  uuid.UUID       `json:"dealer_id"`
	Phone     string          `json:"phone"`
	Direction string          `json:"direction"`
	Body      string          `json:"body"`
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// ConversationPreview is one row in a dealer's conversation list: the
// contact phone plus its most recent message.
type ConversationPreview struct {
	Phone       string   `json:"phone"`
	LastMessage *Message `json:"last_message"`
}
