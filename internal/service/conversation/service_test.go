package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/store"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/logger"
)

type fakeTextSender struct {
	sent   []string
	nextID string
}

func (f *fakeTextSender) SendText(ctx context.Context, accessToken, phoneNumberID, to, body string) (string, error) {
	f.sent = append(f.sent, to)
	return f.nextID, nil
}

func newService(t *testing.T) (*Service, store.MessageStore, *fakeTextSender) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	zl := zerolog.Nop()
	messages := store.NewRedisStore(rdb, time.Hour, &zl)
	sender := &fakeTextSender{nextID: "wamid.out"}
	return NewService(messages, sender, logger.NewLogger(nil)), messages, sender
}

func saveInbound(t *testing.T, messages store.MessageStore, dealerID uuid.UUID, id, phone string, ts time.Time) {
	t.Helper()
	require.NoError(t, messages.SaveMessage(context.Background(), &model.Message{
		ID:        id,
		DealerID:  dealerID,
		Phone:     phone,
		Direction: model.DirectionInbound,
		Body:      "hello",
		Status:    model.MessageStatusReceived,
		Timestamp: ts,
	}))
}

func TestListConversationsNewestFirst(t *testing.T) {
	svc, messages, _ := newService(t)
	ctx := context.Background()
	dealerID := uuid.New()
	now := time.Now()

	saveInbound(t, messages, dealerID, "old", "15551111", now.Add(-time.Hour))
	saveInbound(t, messages, dealerID, "new", "15552222", now)

	previews, err := svc.ListConversations(ctx, dealerID)
	require.NoError(t, err)
	require.Len(t, previews, 2)

	assert.Equal(t, "15552222", previews[0].Phone)
	assert.Equal(t, "15551111", previews[1].Phone)
	require.NotNil(t, previews[0].LastMessage)
	assert.Equal(t, "new", previews[0].LastMessage.ID)
}

func TestGetConversationMarksRead(t *testing.T) {
	svc, messages, _ := newService(t)
	ctx := context.Background()
	dealerID := uuid.New()

	saveInbound(t, messages, dealerID, "in-1", "15551111", time.Now())

	got, err := svc.GetConversation(ctx, dealerID, "15551111", 0, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// The read status is persisted, not just reflected in the response.
	stored, err := messages.GetConversation(ctx, dealerID, "15551111", 10, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, model.MessageStatusRead, stored[0].Status)
}

func TestSendTextStoresOutboundMessage(t *testing.T) {
	svc, messages, sender := newService(t)
	ctx := context.Background()

	dealer := &model.Dealer{
		WhatsAppPhoneID: "pnid-1",
		MetaAccessToken: "token",
	}
	dealer.ID = uuid.New()

	msg, err := svc.SendText(ctx, dealer, "15551111", "the car is still available")
	require.NoError(t, err)
	assert.Equal(t, "wamid.out", msg.ID)
	assert.Equal(t, []string{"15551111"}, sender.sent)

	stored, err := messages.GetConversation(ctx, dealer.ID, "15551111", 10, time.Time{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, model.DirectionOutbound, stored[0].Direction)
	assert.Equal(t, model.MessageStatusSent, stored[0].Status)
}

func TestSendTextRequiresWhatsApp(t *testing.T) {
	svc, _, sender := newService(t)
	ctx := context.Background()

	dealer := &model.Dealer{}
	dealer.ID = uuid.New()

	_, err := svc.SendText(ctx, dealer, "15551111", "hi")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))
	assert.Empty(t, sender.sent)
}

func TestDeleteConversation(t *testing.T) {
	svc, messages, _ := newService(t)
	ctx := context.Background()
	dealerID := uuid.New()

	saveInbound(t, messages, dealerID, "in-1", "15551111", time.Now())
	require.NoError(t, svc.DeleteConversation(ctx, dealerID, "15551111"))

	previews, err := svc.ListConversations(ctx, dealerID)
	require.NoError(t, err)
	assert.Empty(t, previews)
}
