package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository"
	"github.com/motoyard/motoyard-api/internal/store"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/logger"
	"github.com/motoyard/motoyard-api/pkg/metrics"
)

// RecipientFailure records why one recipient was not sent to.
type RecipientFailure struct {
	ContactID uuid.UUID `json:"contact_id"`
	Phone     string    `json:"phone,omitempty"`
	Reason    string    `json:"reason"`
}

// Result aggregates per-recipient outcomes of one bulk send. Every
// requested recipient lands in exactly one counter.
type Result struct {
	Sent     int                `json:"sent"`
	Failed   int                `json:"failed"`
	Failures []RecipientFailure `json:"failures,omitempty"`
}

type Servicer interface {
	Send(ctx context.Context, dealerID, templateID uuid.UUID, contactIDs []uuid.UUID) (*Result, error)
}

// TemplateSender sends a pre-approved template message.
type TemplateSender interface {
	SendTemplate(ctx context.Context, accessToken, phoneNumberID, to, templateName, language string) (string, error)
}

type Service struct {
	dealers   repository.DealerRepository
	templates repository.TemplateRepository
	contacts  repository.ContactRepository
	messages  store.MessageStore
	sender    TemplateSender
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewService(
	dealers repository.DealerRepository,
	templates repository.TemplateRepository,
	contacts repository.ContactRepository,
	messages store.MessageStore,
	sender TemplateSender,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		dealers:   dealers,
		templates: templates,
		contacts:  contacts,
		messages:  messages,
		sender:    sender,
		logger:    logger,
		metrics:   metrics,
	}
}

// Send validates the template and sends it to every opted-in contact owned
// by the dealer. A violating recipient fails alone; a violating template
// aborts the whole send.
func (s *Service) Send(ctx context.Context, dealerID, templateID uuid.UUID, contactIDs []uuid.UUID) (*Result, error) {
	if len(contactIDs) == 0 {
		return nil, apperrors.BadRequest("no recipients", nil)
	}

	tmpl, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tmpl.DealerID != dealerID {
		// Cross-tenant template ids look like missing ones.
		return nil, apperrors.NotFound("template", nil)
	}
	if tmpl.Status != model.TemplateStatusApproved {
		return nil, apperrors.BadRequest("template is not approved", nil)
	}

	dealer, err := s.dealers.Get(ctx, dealerID)
	if err != nil {
		return nil, err
	}
	if !dealer.HasWhatsApp() {
		return nil, apperrors.BadRequest("whatsapp is not connected", nil)
	}

	owned, err := s.contacts.ListByIDs(ctx, dealerID, contactIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	byID := make(map[uuid.UUID]*model.Contact, len(owned))
	for _, c := range owned {
		byID[c.ID] = c
	}

	result := &Result{}
	for _, id := range contactIDs {
		contact, ok := byID[id]
		if !ok {
			// Covers both unknown ids and contacts owned by another dealer.
			s.fail(result, RecipientFailure{ContactID: id, Reason: "contact not found"})
			continue
		}
		if !contact.OptedIn {
			s.fail(result, RecipientFailure{ContactID: id, Phone: contact.Phone, Reason: "contact not opted in"})
			continue
		}

		providerID, err := s.sender.SendTemplate(ctx,
			dealer.MetaAccessToken, dealer.WhatsAppPhoneID,
			contact.Phone, tmpl.Name, tmpl.Language)
		if err != nil {
			s.fail(result, RecipientFailure{ContactID: id, Phone: contact.Phone, Reason: err.Error()})
			continue
		}

		result.Sent++
		if s.metrics != nil {
			s.metrics.BroadcastRecipients.WithLabelValues("sent").Inc()
		}

		msg := &model.Message{
			ID:        providerID,
			DealerID:  dealerID,
			Phone:     contact.Phone,
			Direction: model.DirectionOutbound,
			Body:      tmpl.Body,
			Status:    model.MessageStatusSent,
			Timestamp: time.Now().UTC(),
		}
		if err := s.messages.SaveMessage(ctx, msg); err != nil {
			s.logger.Error(err, "template sent but not stored",
				"dealer_id", dealerID.String(), "message_id", providerID)
		}
	}
	return result, nil
}

func (s *Service) fail(result *Result, failure RecipientFailure) {
	result.Failed++
	result.Failures = append(result.Failures, failure)
	if s.metrics != nil {
		s.metrics.BroadcastRecipients.WithLabelValues("failed").Inc()
	}
}
