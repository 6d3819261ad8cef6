package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoyard/motoyard-api/internal/email"
	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository/memory"
	"github.com/motoyard/motoyard-api/pkg/logger"
)

type fakePoster struct {
	failFor map[uuid.UUID]error
	posted  []string
	keys    []string
}

func (f *fakePoster) publish(itemKey string) (string, error) {
	id, err := uuid.Parse(itemKey)
	if err == nil {
		if pubErr, ok := f.failFor[id]; ok {
			return "", pubErr
		}
	}
	f.keys = append(f.keys, itemKey)
	f.posted = append(f.posted, "post-"+itemKey)
	return "post-" + itemKey, nil
}

func (f *fakePoster) PublishPagePost(ctx context.Context, accessToken, pageID, message, imageURL, idempotencyKey string) (string, error) {
	return f.publish(idempotencyKey)
}

func (f *fakePoster) PublishInstagramPost(ctx context.Context, accessToken, instagramID, caption, imageURL, idempotencyKey string) (string, error) {
	return f.publish(idempotencyKey)
}

func (f *fakePoster) PublishPost(ctx context.Context, accessToken, orgURN, text, imageURL, idempotencyKey string) (string, error) {
	return f.publish(idempotencyKey)
}

type digestRecorder struct {
	digests map[string][]string
}

func (d *digestRecorder) SendDispatchFailureDigest(ctx context.Context, to, dealerName string, failures []string) error {
	if d.digests == nil {
		d.digests = make(map[string][]string)
	}
	d.digests[to] = append(d.digests[to], failures...)
	return nil
}

type dispatchFixture struct {
	svc     *Service
	content *memory.ContentRepository
	dealers *memory.DealerRepository
	poster  *fakePoster
	digests *digestRecorder
	dealer  *model.Dealer
}

func newDispatchFixture(t *testing.T) *dispatchFixture {
	t.Helper()

	f := &dispatchFixture{
		content: memory.NewContentRepository(),
		dealers: memory.NewDealerRepository(),
		poster:  &fakePoster{failFor: make(map[uuid.UUID]error)},
		digests: &digestRecorder{},
	}
	f.svc = NewService(f.content, f.dealers, f.poster, f.poster, f.digests, 0, logger.NewLogger(nil), nil)

	f.dealer = &model.Dealer{
		Name:                "Yard One",
		Email:               "one@example.com",
		FacebookPageID:      "page-1",
		InstagramID:         "ig-1",
		MetaAccessToken:     "token",
		LinkedInOrgURN:      "urn:li:organization:1",
		LinkedInAccessToken: "li-token",
	}
	require.NoError(t, f.dealers.Create(context.Background(), f.dealer))
	return f
}

func (f *dispatchFixture) addItem(t *testing.T, platform string, scheduledAt time.Time) *model.ContentItem {
	t.Helper()
	item := &model.ContentItem{
		DealerID:    f.dealer.ID,
		Platform:    platform,
		Body:        "2019 Corolla, low mileage",
		ImageURL:    "https://example.com/corolla.jpg",
		Status:      model.ContentStatusScheduled,
		ScheduledAt: &scheduledAt,
	}
	require.NoError(t, f.content.Create(context.Background(), item))
	return item
}

func TestRunPostsDueItemsOnly(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	due := f.addItem(t, model.PlatformFacebook, time.Now().Add(-time.Minute))
	future := f.addItem(t, model.PlatformFacebook, time.Now().Add(time.Hour))

	report, err := f.svc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Successful)
	assert.Equal(t, 0, report.Failed)

	posted, err := f.content.Get(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusPosted, posted.Status)
	require.NotNil(t, posted.PostedAt)

	untouched, err := f.content.Get(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusScheduled, untouched.Status)
}

func TestRunUsesItemIDAsIdempotencyKey(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	item := f.addItem(t, model.PlatformLinkedIn, time.Now().Add(-time.Minute))

	_, err := f.svc.Run(ctx)
	require.NoError(t, err)

	require.Len(t, f.poster.keys, 1)
	assert.Equal(t, item.ID.String(), f.poster.keys[0])
}

func TestRunPartialFailure(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	good := f.addItem(t, model.PlatformFacebook, time.Now().Add(-time.Minute))
	bad := f.addItem(t, model.PlatformInstagram, time.Now().Add(-time.Minute))
	f.poster.failFor[bad.ID] = errors.New("media upload rejected")

	report, err := f.svc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Successful)
	assert.Equal(t, 1, report.Failed)

	postedItem, err := f.content.Get(ctx, good.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusPosted, postedItem.Status)

	failedItem, err := f.content.Get(ctx, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusFailed, failedItem.Status)
	assert.Contains(t, failedItem.LastError, "media upload rejected")
}

func TestRunSkipsDisconnectedPlatform(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	f.dealer.LinkedInAccessToken = ""
	require.NoError(t, f.dealers.Update(ctx, f.dealer))

	item := f.addItem(t, model.PlatformLinkedIn, time.Now().Add(-time.Minute))

	report, err := f.svc.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Empty(t, f.poster.posted, "no provider call without credentials")

	failed, err := f.content.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusFailed, failed.Status)
	assert.Contains(t, failed.LastError, "not connected")
}

func TestRunEmailsFailureDigest(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	item := f.addItem(t, model.PlatformFacebook, time.Now().Add(-time.Minute))
	f.poster.failFor[item.ID] = errors.New("token expired")

	_, err := f.svc.Run(ctx)
	require.NoError(t, err)

	require.Contains(t, f.digests.digests, "one@example.com")
	assert.Contains(t, f.digests.digests["one@example.com"][0], "token expired")
}

func TestRunSecondPassFindsNothing(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()

	f.addItem(t, model.PlatformFacebook, time.Now().Add(-time.Minute))

	first, err := f.svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Processed)

	// Claimed items are gone from the scheduled pool.
	second, err := f.svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
}

var _ email.Service = (*digestRecorder)(nil)
