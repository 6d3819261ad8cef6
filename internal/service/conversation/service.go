package conversation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/store"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/logger"
)

const detailLimit = 100

type Servicer interface {
	ListConversations(ctx context.Context, dealerID uuid.UUID) ([]*model.ConversationPreview, error)
	GetConversation(ctx context.Context, dealerID uuid.UUID, phone string, limit int, before time.Time) ([]*model.Message, error)
	DeleteConversation(ctx context.Context, dealerID uuid.UUID, phone string) error
	SendText(ctx context.Context, dealer *model.Dealer, phone, body string) (*model.Message, error)
}

// TextSender sends a free-form WhatsApp message on behalf of a dealer.
type TextSender interface {
	SendText(ctx context.Context, accessToken, phoneNumberID, to, body string) (string, error)
}

type Service struct {
	messages store.MessageStore
	sender   TextSender
	logger   *logger.Logger
}

func NewService(messages store.MessageStore, sender TextSender, logger *logger.Logger) *Service {
	return &Service{
		messages: messages,
		sender:   sender,
		logger:   logger,
	}
}

func (s *Service) ListConversations(ctx context.Context, dealerID uuid.UUID) ([]*model.ConversationPreview, error) {
	phones, err := s.messages.GetConversations(ctx, dealerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	previews := make([]*model.ConversationPreview, 0, len(phones))
	for _, phone := range phones {
		msgs, err := s.messages.GetConversation(ctx, dealerID, phone, 1, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("failed to load preview for %s: %w", phone, err)
		}
		preview := &model.ConversationPreview{Phone: phone}
		if len(msgs) > 0 {
			preview.LastMessage = msgs[len(msgs)-1]
		}
		previews = append(previews, preview)
	}

	sort.Slice(previews, func(i, j int) bool {
		ti, tj := time.Time{}, time.Time{}
		if previews[i].LastMessage != nil {
			ti = previews[i].LastMessage.Timestamp
		}
		if previews[j].LastMessage != nil {
			tj = previews[j].LastMessage.Timestamp
		}
		return ti.After(tj)
	})
	return previews, nil
}

// GetConversation returns the message history and marks unread inbound
// messages read as a side effect.
func (s *Service) GetConversation(ctx context.Context, dealerID uuid.UUID, phone string, limit int, before time.Time) ([]*model.Message, error) {
	if limit <= 0 || limit > detailLimit {
		limit = detailLimit
	}

	messages, err := s.messages.GetConversation(ctx, dealerID, phone, limit, before)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	if err := s.messages.MarkAsRead(ctx, dealerID, phone); err != nil {
		s.logger.Error(err, "failed to mark conversation read",
			"dealer_id", dealerID.String(), "phone", phone)
	}
	return messages, nil
}

func (s *Service) DeleteConversation(ctx context.Context, dealerID uuid.UUID, phone string) error {
	return s.messages.DeleteConversation(ctx, dealerID, phone)
}

// SendText sends one free-form reply within a conversation and records the
// outbound message.
func (s *Service) SendText(ctx context.Context, dealer *model.Dealer, phone, body string) (*model.Message, error) {
	if !dealer.HasWhatsApp() {
		return nil, apperrors.BadRequest("whatsapp is not connected", nil)
	}

	providerID, err := s.sender.SendText(ctx, dealer.MetaAccessToken, dealer.WhatsAppPhoneID, phone, body)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ID:        providerID,
		DealerID:  dealer.ID,
		Phone:     phone,
		Direction: model.DirectionOutbound,
		Body:      body,
		Status:    model.MessageStatusSent,
		Timestamp: time.Now().UTC(),
	}
	if err := s.messages.SaveMessage(ctx, msg); err != nil {
		s.logger.Error(err, "message sent but not stored",
			"dealer_id", dealer.ID.String(), "message_id", providerID)
	}
	return msg, nil
}
