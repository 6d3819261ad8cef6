package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/pkg/metrics"
)

const (
	// DefaultRetention is how long messages and conversation indexes live.
	DefaultRetention = 90 * 24 * time.Hour

	// markReadWindow bounds how many recent messages MarkAsRead rewrites.
	markReadWindow = 100
)

type RedisStore struct {
	rdb       *redis.Client
	retention time.Duration
	logger    *zerolog.Logger
	metrics   *metrics.Metrics
}

func NewRedisStore(rdb *redis.Client, retention time.Duration, logger *zerolog.Logger) *RedisStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &RedisStore{rdb: rdb, retention: retention, logger: logger}
}

// WithMetrics attaches the metrics bundle. Tests leave it unset.
func (s *RedisStore) WithMetrics(m *metrics.Metrics) *RedisStore {
	s.metrics = m
	return s
}

func (s *RedisStore) observe(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.StoreOperations.WithLabelValues(op, status).Inc()
	s.metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func msgKey(dealerID uuid.UUID, messageID string) string {
	return fmt.Sprintf("wa:%s:msg:%s", dealerID, messageID)
}

func convKey(dealerID uuid.UUID, phone string) string {
	return fmt.Sprintf("wa:%s:conv:%s", dealerID, phone)
}

func contactsKey(dealerID uuid.UUID) string {
	return fmt.Sprintf("wa:%s:contacts", dealerID)
}

func (s *RedisStore) SaveMessage(ctx context.Context, msg *model.Message) (err error) {
	defer func(start time.Time) { s.observe("save", start, err) }(time.Now())

	blob, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	// One round trip: blob write, index append, contacts-set entry, TTL
	// refreshes. Equal timestamps order lexicographically by message id.
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, msgKey(msg.DealerID, msg.ID), blob, s.retention)
	pipe.ZAdd(ctx, convKey(msg.DealerID, msg.Phone), redis.Z{
		Score:  float64(msg.Timestamp.UnixMilli()),
		Member: msg.ID,
	})
	pipe.Expire(ctx, convKey(msg.DealerID, msg.Phone), s.retention)
	pipe.SAdd(ctx, contactsKey(msg.DealerID), msg.Phone)
	pipe.Expire(ctx, contactsKey(msg.DealerID), s.retention)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (s *RedisStore) GetConversation(ctx context.Context, dealerID uuid.UUID, phone string, limit int, before time.Time) (_ []*model.Message, err error) {
	defer func(start time.Time) { s.observe("get_conversation", start, err) }(time.Now())

	if limit <= 0 {
		limit = markReadWindow
	}

	max := "+inf"
	if !before.IsZero() {
		max = fmt.Sprintf("(%d", before.UnixMilli())
	}

	ids, err := s.rdb.ZRevRangeByScore(ctx, convKey(dealerID, phone), &redis.ZRangeBy{
		Min:    "-inf",
		Max:    max,
		Offset: 0,
		Count:  int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = msgKey(dealerID, id)
	}

	blobs, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	// ids come newest-first; build the result oldest-first. Indexed ids
	// whose blob has expired are skipped, not errors.
	messages := make([]*model.Message, 0, len(blobs))
	for i := len(blobs) - 1; i >= 0; i-- {
		raw, ok := blobs[i].(string)
		if !ok {
			continue
		}
		var msg model.Message
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			s.logger.Warn().Str("key", keys[i]).Err(err).Msg("skipping undecodable message blob")
			continue
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}

func (s *RedisStore) GetConversations(ctx context.Context, dealerID uuid.UUID) (_ []string, err error) {
	defer func(start time.Time) { s.observe("list_conversations", start, err) }(time.Now())

	phones, err := s.rdb.SMembers(ctx, contactsKey(dealerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return phones, nil
}

func (s *RedisStore) MarkAsRead(ctx context.Context, dealerID uuid.UUID, phone string) (err error) {
	defer func(start time.Time) { s.observe("mark_read", start, err) }(time.Now())

	messages, err := s.GetConversation(ctx, dealerID, phone, markReadWindow, time.Time{})
	if err != nil {
		return err
	}

	for _, msg := range messages {
		if msg.Direction != model.DirectionInbound || msg.Status == model.MessageStatusRead {
			continue
		}
		msg.Status = model.MessageStatusRead
		if err := s.rewrite(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *RedisStore) UpdateStatus(ctx context.Context, dealerID uuid.UUID, messageID, status string) (err error) {
	defer func(start time.Time) { s.observe("update_status", start, err) }(time.Now())

	raw, err := s.rdb.Get(ctx, msgKey(dealerID, messageID)).Result()
	if err == redis.Nil {
		// Receipt for an expired or unknown message; nothing to update.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}

	var msg model.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	msg.Status = status
	return s.rewrite(ctx, &msg)
}

func (s *RedisStore) rewrite(ctx context.Context, msg *model.Message) error {
	blob, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := s.rdb.Set(ctx, msgKey(msg.DealerID, msg.ID), blob, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("failed to rewrite message: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteConversation(ctx context.Context, dealerID uuid.UUID, phone string) (err error) {
	defer func(start time.Time) { s.observe("delete_conversation", start, err) }(time.Now())

	ids, err := s.rdb.ZRange(ctx, convKey(dealerID, phone), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read conversation index: %w", err)
	}

	pipe := s.rdb.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, msgKey(dealerID, id))
	}
	pipe.Del(ctx, convKey(dealerID, phone))
	pipe.SRem(ctx, contactsKey(dealerID), phone)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}
