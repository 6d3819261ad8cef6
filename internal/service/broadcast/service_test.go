package broadcast

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository/memory"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/logger"
)

type fakeSender struct {
	sent    []string
	failFor map[string]error
	nextID  int
}

func (f *fakeSender) SendTemplate(ctx context.Context, accessToken, phoneNumberID, to, templateName, language string) (string, error) {
	if err, ok := f.failFor[to]; ok {
		return "", err
	}
	f.sent = append(f.sent, to)
	f.nextID++
	return fmt.Sprintf("wamid.%d", f.nextID), nil
}

type recordingStore struct {
	saved []*model.Message
}

func (r *recordingStore) SaveMessage(ctx context.Context, msg *model.Message) error {
	r.saved = append(r.saved, msg)
	return nil
}

func (r *recordingStore) GetConversation(ctx context.Context, dealerID uuid.UUID, phone string, limit int, before time.Time) ([]*model.Message, error) {
	return nil, nil
}

func (r *recordingStore) GetConversations(ctx context.Context, dealerID uuid.UUID) ([]string, error) {
	return nil, nil
}

func (r *recordingStore) MarkAsRead(ctx context.Context, dealerID uuid.UUID, phone string) error {
	return nil
}

func (r *recordingStore) UpdateStatus(ctx context.Context, dealerID uuid.UUID, messageID, status string) error {
	return nil
}

func (r *recordingStore) DeleteConversation(ctx context.Context, dealerID uuid.UUID, phone string) error {
	return nil
}

type fixture struct {
	svc      *Service
	dealers  *memory.DealerRepository
	contacts *memory.ContactRepository
	tmpls    *memory.TemplateRepository
	sender   *fakeSender
	store    *recordingStore

	dealer *model.Dealer
	tmpl   *model.Template
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		dealers:  memory.NewDealerRepository(),
		contacts: memory.NewContactRepository(),
		tmpls:    memory.NewTemplateRepository(),
		sender:   &fakeSender{failFor: make(map[string]error)},
		store:    &recordingStore{},
	}
	f.svc = NewService(f.dealers, f.tmpls, f.contacts, f.store, f.sender, logger.NewLogger(nil), nil)

	f.dealer = &model.Dealer{
		Name:            "Yard One",
		Email:           "one@example.com",
		WhatsAppPhoneID: "pnid-1",
		MetaAccessToken: "token",
	}
	require.NoError(t, f.dealers.Create(ctx, f.dealer))

	f.tmpl = &model.Template{
		DealerID: f.dealer.ID,
		Name:     "new_arrival",
		Language: "en",
		Body:     "A new vehicle just arrived.",
		Status:   model.TemplateStatusApproved,
	}
	require.NoError(t, f.tmpls.Create(ctx, f.tmpl))

	return f
}

func (f *fixture) addContact(t *testing.T, phone string, optedIn bool) *model.Contact {
	t.Helper()
	contact := &model.Contact{
		DealerID: f.dealer.ID,
		Phone:    phone,
		OptedIn:  optedIn,
	}
	require.NoError(t, f.contacts.Create(context.Background(), contact))
	return contact
}

func TestSendCountsEveryRecipientOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok1 := f.addContact(t, "15551111", true)
	ok2 := f.addContact(t, "15552222", true)
	optedOut := f.addContact(t, "15553333", false)
	failing := f.addContact(t, "15554444", true)
	f.sender.failFor["15554444"] = apperrors.Upstream("meta", errors.New("rate limited"))

	ids := []uuid.UUID{ok1.ID, ok2.ID, optedOut.ID, failing.ID, uuid.New()}
	result, err := f.svc.Send(ctx, f.dealer.ID, f.tmpl.ID, ids)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 3, result.Failed)
	assert.Equal(t, len(ids), result.Sent+result.Failed)
	assert.Len(t, result.Failures, 3)

	// Outbound messages recorded only for actual sends.
	require.Len(t, f.store.saved, 2)
	for _, msg := range f.store.saved {
		assert.Equal(t, model.DirectionOutbound, msg.Direction)
		assert.Equal(t, model.MessageStatusSent, msg.Status)
		assert.Equal(t, f.dealer.ID, msg.DealerID)
	}
}

func TestSendRejectsBorrowedContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &model.Dealer{Name: "Yard Two", Email: "two@example.com"}
	require.NoError(t, f.dealers.Create(ctx, other))
	borrowed := &model.Contact{DealerID: other.ID, Phone: "15559999", OptedIn: true}
	require.NoError(t, f.contacts.Create(ctx, borrowed))

	result, err := f.svc.Send(ctx, f.dealer.ID, f.tmpl.ID, []uuid.UUID{borrowed.ID})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "contact not found", result.Failures[0].Reason)
	assert.Empty(t, f.sender.sent, "cross-tenant contacts must never be sent to")
}

func TestSendRejectsUnapprovedTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.tmpl.Status = model.TemplateStatusPending
	require.NoError(t, f.tmpls.Update(ctx, f.tmpl))

	contact := f.addContact(t, "15551111", true)
	_, err := f.svc.Send(ctx, f.dealer.ID, f.tmpl.ID, []uuid.UUID{contact.ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))
}

func TestSendRejectsCrossTenantTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &model.Dealer{Name: "Yard Two", Email: "two@example.com"}
	require.NoError(t, f.dealers.Create(ctx, other))
	foreign := &model.Template{DealerID: other.ID, Name: "x", Body: "y", Status: model.TemplateStatusApproved}
	require.NoError(t, f.tmpls.Create(ctx, foreign))

	contact := f.addContact(t, "15551111", true)
	_, err := f.svc.Send(ctx, f.dealer.ID, foreign.ID, []uuid.UUID{contact.ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Code(err))
}

func TestSendRequiresWhatsAppCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dealer.WhatsAppPhoneID = ""
	require.NoError(t, f.dealers.Update(ctx, f.dealer))

	contact := f.addContact(t, "15551111", true)
	_, err := f.svc.Send(ctx, f.dealer.ID, f.tmpl.ID, []uuid.UUID{contact.ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))
}
