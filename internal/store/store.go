package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
)

// MessageStore is the dealer- and contact-scoped message persistence layer.
// Messages carry a fixed retention TTL; conversation indexes refresh their
// TTL on every write.
type MessageStore interface {
	// SaveMessage writes the message blob and appends its id to the
	// conversation index. Safe to call concurrently for distinct messages
	// in the same conversation.
	SaveMessage(ctx context.Context, msg *model.Message) error

	// GetConversation returns up to limit most-recent messages in
	// chronological order. Messages still indexed but expired from storage
	// are skipped. A non-zero before pages backwards in time.
	GetConversation(ctx context.Context, dealerID uuid.UUID, phone string, limit int, before time.Time) ([]*model.Message, error)

	// GetConversations returns the contact phones with at least one
	// conversation entry for the dealer.
	GetConversations(ctx context.Context, dealerID uuid.UUID) ([]string, error)

	// MarkAsRead rewrites recent inbound messages with status read.
	// Idempotent.
	MarkAsRead(ctx context.Context, dealerID uuid.UUID, phone string) error

	// UpdateStatus applies a provider delivery receipt to one message.
	// Missing (expired) messages are a no-op.
	UpdateStatus(ctx context.Context, dealerID uuid.UUID, messageID, status string) error

	// DeleteConversation removes every message reachable from the index,
	// the index itself, and the conversation-list entry.
	DeleteConversation(ctx context.Context, dealerID uuid.UUID, phone string) error
}
