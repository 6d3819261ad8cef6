package webhook

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository/memory"
	"github.com/motoyard/motoyard-api/pkg/logger"
)

type fakeMessageStore struct {
	saved    []*model.Message
	statuses map[string]string
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{statuses: make(map[string]string)}
}

func (f *fakeMessageStore) SaveMessage(ctx context.Context, msg *model.Message) error {
	f.saved = append(f.saved, msg)
	return nil
}

func (f *fakeMessageStore) GetConversation(ctx context.Context, dealerID uuid.UUID, phone string, limit int, before time.Time) ([]*model.Message, error) {
	return nil, nil
}

func (f *fakeMessageStore) GetConversations(ctx context.Context, dealerID uuid.UUID) ([]string, error) {
	return nil, nil
}

func (f *fakeMessageStore) MarkAsRead(ctx context.Context, dealerID uuid.UUID, phone string) error {
	return nil
}

func (f *fakeMessageStore) UpdateStatus(ctx context.Context, dealerID uuid.UUID, messageID, status string) error {
	f.statuses[messageID] = status
	return nil
}

func (f *fakeMessageStore) DeleteConversation(ctx context.Context, dealerID uuid.UUID, phone string) error {
	return nil
}

func messagePayload(phoneNumberID, from, msgID, body string) *model.WebhookPayload {
	var wm model.WebhookMessage
	wm.From = from
	wm.ID = msgID
	wm.Timestamp = "1714000000"
	wm.Type = "text"
	wm.Text.Body = body

	return &model.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []model.WebhookEntry{{
			ID: "entry-1",
			Changes: []model.WebhookChange{{
				Field: "messages",
				Value: model.WebhookValue{
					Metadata: model.WebhookMetadata{PhoneNumberID: phoneNumberID},
					Messages: []model.WebhookMessage{wm},
				},
			}},
		}},
	}
}

func statusPayload(phoneNumberID, recipient, msgID, status string) *model.WebhookPayload {
	return &model.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []model.WebhookEntry{{
			Changes: []model.WebhookChange{{
				Field: "messages",
				Value: model.WebhookValue{
					Metadata: model.WebhookMetadata{PhoneNumberID: phoneNumberID},
					Statuses: []model.WebhookStatus{{
						ID:          msgID,
						Status:      status,
						RecipientID: recipient,
					}},
				},
			}},
		}},
	}
}

func newTestService(t *testing.T) (*Service, *memory.DealerRepository, *memory.ContactRepository, *fakeMessageStore) {
	t.Helper()
	dealers := memory.NewDealerRepository()
	contacts := memory.NewContactRepository()
	messages := newFakeMessageStore()
	svc := NewService(dealers, contacts, messages, logger.NewLogger(nil), nil)
	return svc, dealers, contacts, messages
}

func TestProcessEventStoresInboundMessage(t *testing.T) {
	svc, dealers, contacts, messages := newTestService(t)
	ctx := context.Background()

	dealer := &model.Dealer{Name: "Yard One", Email: "one@example.com", WhatsAppPhoneID: "pnid-1"}
	require.NoError(t, dealers.Create(ctx, dealer))

	svc.ProcessEvent(ctx, messagePayload("pnid-1", "15551234", "wamid.1", "is the corolla still available?"))

	require.Len(t, messages.saved, 1)
	msg := messages.saved[0]
	assert.Equal(t, dealer.ID, msg.DealerID)
	assert.Equal(t, "15551234", msg.Phone)
	assert.Equal(t, model.DirectionInbound, msg.Direction)
	assert.Equal(t, model.MessageStatusReceived, msg.Status)
	assert.Equal(t, "is the corolla still available?", msg.Body)
	assert.Equal(t, time.Unix(1714000000, 0).UTC(), msg.Timestamp)

	// First-time sender becomes a contact.
	contact, err := contacts.GetByPhone(ctx, dealer.ID, "15551234")
	require.NoError(t, err)
	assert.True(t, contact.OptedIn)
	assert.Equal(t, "whatsapp", contact.Source)
}

func TestProcessEventFallsBackToContactLookup(t *testing.T) {
	svc, dealers, contacts, messages := newTestService(t)
	ctx := context.Background()

	dealer := &model.Dealer{Name: "Yard One", Email: "one@example.com"}
	require.NoError(t, dealers.Create(ctx, dealer))
	require.NoError(t, contacts.Create(ctx, &model.Contact{
		DealerID: dealer.ID,
		Phone:    "15551234",
		OptedIn:  true,
	}))

	// Unknown phone-number id, known sender phone.
	svc.ProcessEvent(ctx, messagePayload("pnid-unknown", "15551234", "wamid.2", "hello"))

	require.Len(t, messages.saved, 1)
	assert.Equal(t, dealer.ID, messages.saved[0].DealerID)
}

func TestProcessEventDropsUnresolvable(t *testing.T) {
	svc, _, _, messages := newTestService(t)
	ctx := context.Background()

	svc.ProcessEvent(ctx, messagePayload("pnid-unknown", "19990000", "wamid.3", "hello"))

	assert.Empty(t, messages.saved, "unresolvable events must never reach the store")
}

func TestProcessEventAppliesDeliveryReceipt(t *testing.T) {
	svc, dealers, _, messages := newTestService(t)
	ctx := context.Background()

	dealer := &model.Dealer{Name: "Yard One", Email: "one@example.com", WhatsAppPhoneID: "pnid-1"}
	require.NoError(t, dealers.Create(ctx, dealer))

	svc.ProcessEvent(ctx, statusPayload("pnid-1", "15551234", "wamid.4", "delivered"))

	assert.Equal(t, "delivered", messages.statuses["wamid.4"])
}

func TestProcessEventIgnoresOtherFields(t *testing.T) {
	svc, dealers, _, messages := newTestService(t)
	ctx := context.Background()

	dealer := &model.Dealer{Name: "Yard One", Email: "one@example.com", WhatsAppPhoneID: "pnid-1"}
	require.NoError(t, dealers.Create(ctx, dealer))

	payload := messagePayload("pnid-1", "15551234", "wamid.5", "hello")
	payload.Entry[0].Changes[0].Field = "account_update"

	svc.ProcessEvent(ctx, payload)

	assert.Empty(t, messages.saved)
}
