package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoyard/motoyard-api/internal/model"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	logger := zerolog.Nop()
	return NewRedisStore(rdb, time.Hour, &logger), mr
}

func newMessage(dealerID uuid.UUID, id, phone, direction string, ts time.Time) *model.Message {
	status := model.MessageStatusReceived
	if direction == model.DirectionOutbound {
		status = model.MessageStatusSent
	}
	return &model.Message{
		ID:        id,
		DealerID:  dealerID,
		Phone:     phone,
		Direction: direction,
		Body:      "body of " + id,
		Status:    status,
		Timestamp: ts,
	}
}

func TestSaveAndGetConversationOrdering(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	dealerID := uuid.New()
	base := time.Now().Truncate(time.Millisecond)

	// Save out of chronological order.
	for _, i := range []int{2, 0, 3, 1} {
		msg := newMessage(dealerID, fmt.Sprintf("msg-%d", i), "15551234", model.DirectionInbound, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.SaveMessage(ctx, msg))
	}

	messages, err := store.GetConversation(ctx, dealerID, "15551234", 10, time.Time{})
	require.NoError(t, err)
	require.Len(t, messages, 4)

	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), msg.ID, "expected oldest-first order")
	}
}

func TestGetConversationLimitAndBefore(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	dealerID := uuid.New()
	base := time.Now().Truncate(time.Millisecond)

	for i := 0; i < 5; i++ {
		msg := newMessage(dealerID, fmt.Sprintf("msg-%d", i), "15551234", model.DirectionInbound, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.SaveMessage(ctx, msg))
	}

	// Limit keeps the newest messages.
	messages, err := store.GetConversation(ctx, dealerID, "15551234", 2, time.Time{})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "msg-3", messages[0].ID)
	assert.Equal(t, "msg-4", messages[1].ID)

	// before is exclusive.
	messages, err = store.GetConversation(ctx, dealerID, "15551234", 10, base.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "msg-0", messages[0].ID)
	assert.Equal(t, "msg-1", messages[1].ID)
}

func TestDealerIsolation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	dealerA := uuid.New()
	dealerB := uuid.New()
	now := time.Now()

	// Same phone talks to two different dealers.
	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerA, "a-1", "15551234", model.DirectionInbound, now)))
	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerB, "b-1", "15551234", model.DirectionInbound, now)))

	messagesA, err := store.GetConversation(ctx, dealerA, "15551234", 10, time.Time{})
	require.NoError(t, err)
	require.Len(t, messagesA, 1)
	assert.Equal(t, "a-1", messagesA[0].ID)

	messagesB, err := store.GetConversation(ctx, dealerB, "15551234", 10, time.Time{})
	require.NoError(t, err)
	require.Len(t, messagesB, 1)
	assert.Equal(t, "b-1", messagesB[0].ID)

	// Deleting A's conversation leaves B untouched.
	require.NoError(t, store.DeleteConversation(ctx, dealerA, "15551234"))

	messagesA, err = store.GetConversation(ctx, dealerA, "15551234", 10, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, messagesA)

	messagesB, err = store.GetConversation(ctx, dealerB, "15551234", 10, time.Time{})
	require.NoError(t, err)
	assert.Len(t, messagesB, 1)
}

func TestGetConversationSkipsExpiredBlobs(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	dealerID := uuid.New()
	now := time.Now()

	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerID, "gone", "15551234", model.DirectionInbound, now)))
	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerID, "kept", "15551234", model.DirectionInbound, now.Add(time.Minute))))

	// Simulate the blob expiring while the index entry survives.
	mr.Del(msgKey(dealerID, "gone"))

	messages, err := store.GetConversation(ctx, dealerID, "15551234", 10, time.Time{})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "kept", messages[0].ID)
}

func TestSaveMessageSetsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	dealerID := uuid.New()

	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerID, "m-1", "15551234", model.DirectionInbound, time.Now())))

	assert.Greater(t, mr.TTL(msgKey(dealerID, "m-1")), time.Duration(0))
	assert.Greater(t, mr.TTL(convKey(dealerID, "15551234")), time.Duration(0))
	assert.Greater(t, mr.TTL(contactsKey(dealerID)), time.Duration(0))
}

func TestGetConversations(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	dealerID := uuid.New()
	now := time.Now()

	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerID, "m-1", "15551111", model.DirectionInbound, now)))
	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerID, "m-2", "15552222", model.DirectionInbound, now)))
	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerID, "m-3", "15551111", model.DirectionOutbound, now)))

	phones, err := store.GetConversations(ctx, dealerID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"15551111", "15552222"}, phones)
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	dealerID := uuid.New()
	now := time.Now()

	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerID, "in-1", "15551234", model.DirectionInbound, now)))
	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerID, "out-1", "15551234", model.DirectionOutbound, now.Add(time.Second))))

	require.NoError(t, store.MarkAsRead(ctx, dealerID, "15551234"))
	require.NoError(t, store.MarkAsRead(ctx, dealerID, "15551234"))

	messages, err := store.GetConversation(ctx, dealerID, "15551234", 10, time.Time{})
	require.NoError(t, err)
	require.Len(t, messages, 2)

	byID := map[string]*model.Message{}
	for _, msg := range messages {
		byID[msg.ID] = msg
	}
	assert.Equal(t, model.MessageStatusRead, byID["in-1"].Status)
	// Outbound status is untouched.
	assert.Equal(t, model.MessageStatusSent, byID["out-1"].Status)
}

func TestUpdateStatus(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	dealerID := uuid.New()

	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerID, "out-1", "15551234", model.DirectionOutbound, time.Now())))

	require.NoError(t, store.UpdateStatus(ctx, dealerID, "out-1", model.MessageStatusDelivered))

	messages, err := store.GetConversation(ctx, dealerID, "15551234", 10, time.Time{})
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, model.MessageStatusDelivered, messages[0].Status)

	// A receipt for an unknown message is dropped without error.
	require.NoError(t, store.UpdateStatus(ctx, dealerID, "no-such-id", model.MessageStatusRead))
}

func TestDeleteConversationRemovesEverything(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	dealerID := uuid.New()
	now := time.Now()

	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerID, "m-1", "15551234", model.DirectionInbound, now)))
	require.NoError(t, store.SaveMessage(ctx, newMessage(dealerID, "m-2", "15551234", model.DirectionInbound, now.Add(time.Second))))

	require.NoError(t, store.DeleteConversation(ctx, dealerID, "15551234"))

	assert.False(t, mr.Exists(msgKey(dealerID, "m-1")))
	assert.False(t, mr.Exists(msgKey(dealerID, "m-2")))
	assert.False(t, mr.Exists(convKey(dealerID, "15551234")))

	phones, err := store.GetConversations(ctx, dealerID)
	require.NoError(t, err)
	assert.Empty(t, phones)
}
