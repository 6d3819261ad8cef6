package webhook

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository"
	"github.com/motoyard/motoyard-api/internal/store"
	"github.com/motoyard/motoyard-api/pkg/logger"
	"github.com/motoyard/motoyard-api/pkg/metrics"
)

const (
	resolveCacheTTL     = 5 * time.Minute
	resolveCacheCleanup = 10 * time.Minute
)

type Servicer interface {
	ProcessEvent(ctx context.Context, payload *model.WebhookPayload)
}

// Service ingests Meta webhook events: resolves the owning dealer and writes
// inbound messages and delivery receipts to the message store. Ingestion
// failures are logged and counted, never returned to the provider.
type Service struct {
	dealers  repository.DealerRepository
	contacts repository.ContactRepository
	messages store.MessageStore
	resolved *gocache.Cache
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(
	dealers repository.DealerRepository,
	contacts repository.ContactRepository,
	messages store.MessageStore,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		dealers:  dealers,
		contacts: contacts,
		messages: messages,
		resolved: gocache.New(resolveCacheTTL, resolveCacheCleanup),
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *Service) ProcessEvent(ctx context.Context, payload *model.WebhookPayload) {
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			s.processChange(ctx, &change.Value)
		}
	}
}

func (s *Service) processChange(ctx context.Context, value *model.WebhookValue) {
	names := make(map[string]string, len(value.Contacts))
	for _, c := range value.Contacts {
		names[c.WaID] = c.Profile.Name
	}

	for _, wm := range value.Messages {
		s.countEvent("message")

		dealerID, ok := s.resolveDealer(ctx, value.Metadata.PhoneNumberID, wm.From)
		if !ok {
			s.logger.Warn("dropping webhook message, no dealer resolved",
				"phone_number_id", value.Metadata.PhoneNumberID, "from", wm.From)
			if s.metrics != nil {
				s.metrics.WebhookEventsDropped.Inc()
			}
			continue
		}

		s.ensureContact(ctx, dealerID, wm.From, names[wm.From])

		raw, _ := json.Marshal(wm)
		msg := &model.Message{
			ID:        wm.ID,
			DealerID:  dealerID,
			Phone:     wm.From,
			Direction: model.DirectionInbound,
			Body:      wm.Text.Body,
			Status:    model.MessageStatusReceived,
			Timestamp: parseTimestamp(wm.Timestamp),
			Payload:   raw,
		}
		if err := s.messages.SaveMessage(ctx, msg); err != nil {
			s.logger.Error(err, "failed to store inbound message",
				"dealer_id", dealerID.String(), "message_id", wm.ID)
		}
	}

	for _, st := range value.Statuses {
		s.countEvent("status")

		dealerID, ok := s.resolveDealer(ctx, value.Metadata.PhoneNumberID, st.RecipientID)
		if !ok {
			s.logger.Warn("dropping webhook status, no dealer resolved",
				"phone_number_id", value.Metadata.PhoneNumberID, "recipient", st.RecipientID)
			if s.metrics != nil {
				s.metrics.WebhookEventsDropped.Inc()
			}
			continue
		}

		if err := s.messages.UpdateStatus(ctx, dealerID, st.ID, st.Status); err != nil {
			s.logger.Error(err, "failed to apply delivery receipt",
				"dealer_id", dealerID.String(), "message_id", st.ID)
		}
	}
}

// resolveDealer maps an event to its owning dealer: the platform-assigned
// phone-number id first, then a contact-phone lookup across tenants.
func (s *Service) resolveDealer(ctx context.Context, phoneNumberID, phone string) (uuid.UUID, bool) {
	if phoneNumberID != "" {
		key := "pnid:" + phoneNumberID
		if cached, found := s.resolved.Get(key); found {
			return cached.(uuid.UUID), true
		}
		if dealer, err := s.dealers.GetByWhatsAppPhoneID(ctx, phoneNumberID); err == nil {
			s.resolved.Set(key, dealer.ID, gocache.DefaultExpiration)
			return dealer.ID, true
		}
	}

	if phone != "" {
		key := "phone:" + phone
		if cached, found := s.resolved.Get(key); found {
			return cached.(uuid.UUID), true
		}
		if dealerID, err := s.contacts.FindDealerByPhone(ctx, phone); err == nil {
			s.resolved.Set(key, dealerID, gocache.DefaultExpiration)
			return dealerID, true
		}
	}

	return uuid.Nil, false
}

// ensureContact records a first-time sender under the resolved dealer.
func (s *Service) ensureContact(ctx context.Context, dealerID uuid.UUID, phone, name string) {
	if _, err := s.contacts.GetByPhone(ctx, dealerID, phone); err == nil {
		return
	}

	contact := &model.Contact{
		DealerID: dealerID,
		Phone:    phone,
		Name:     name,
		OptedIn:  true,
		Source:   "whatsapp",
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		s.logger.Error(err, "failed to auto-create contact",
			"dealer_id", dealerID.String(), "phone", phone)
	}
}

func (s *Service) countEvent(kind string) {
	if s.metrics != nil {
		s.metrics.WebhookEventsReceived.WithLabelValues(kind).Inc()
	}
}

func parseTimestamp(raw string) time.Time {
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}
	return time.Now().UTC()
}
