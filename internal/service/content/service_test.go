package content

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository/memory"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
)

func newItem(dealerID uuid.UUID, platform string) *model.ContentItem {
	return &model.ContentItem{
		DealerID: dealerID,
		Platform: platform,
		Body:     "fresh trade-in on the lot",
		ImageURL: "https://example.com/car.jpg",
	}
}

func TestCreateStartsAsDraft(t *testing.T) {
	svc := NewService(memory.NewContentRepository())
	ctx := context.Background()

	item := newItem(uuid.New(), model.PlatformFacebook)
	item.Status = "posted" // caller-supplied status is ignored
	require.NoError(t, svc.Create(ctx, item))
	assert.Equal(t, model.ContentStatusDraft, item.Status)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(memory.NewContentRepository())
	ctx := context.Background()

	err := svc.Create(ctx, newItem(uuid.New(), "myspace"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))

	noImage := newItem(uuid.New(), model.PlatformInstagram)
	noImage.ImageURL = ""
	err = svc.Create(ctx, noImage)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))
}

func TestApproveScheduleLifecycle(t *testing.T) {
	svc := NewService(memory.NewContentRepository())
	ctx := context.Background()
	dealerID := uuid.New()

	item := newItem(dealerID, model.PlatformFacebook)
	require.NoError(t, svc.Create(ctx, item))

	// Cannot schedule a draft.
	_, err := svc.Schedule(ctx, dealerID, item.ID, time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.Code(err))

	approved, err := svc.Approve(ctx, dealerID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusApproved, approved.Status)

	// Double approve fails.
	_, err = svc.Approve(ctx, dealerID, item.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.Code(err))

	// Past dates are rejected.
	_, err = svc.Schedule(ctx, dealerID, item.ID, time.Now().Add(-time.Minute))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))

	at := time.Now().Add(2 * time.Hour)
	scheduled, err := svc.Schedule(ctx, dealerID, item.ID, at)
	require.NoError(t, err)
	assert.Equal(t, model.ContentStatusScheduled, scheduled.Status)
	require.NotNil(t, scheduled.ScheduledAt)
	assert.True(t, scheduled.ScheduledAt.Equal(at))
}

func TestUpdateResetsToDraft(t *testing.T) {
	svc := NewService(memory.NewContentRepository())
	ctx := context.Background()
	dealerID := uuid.New()

	item := newItem(dealerID, model.PlatformFacebook)
	require.NoError(t, svc.Create(ctx, item))
	_, err := svc.Approve(ctx, dealerID, item.ID)
	require.NoError(t, err)

	edited := newItem(dealerID, model.PlatformFacebook)
	edited.ID = item.ID
	edited.Body = "updated copy"
	require.NoError(t, svc.Update(ctx, edited))
	assert.Equal(t, model.ContentStatusDraft, edited.Status)
}

func TestCrossTenantAccessLooksLikeMissing(t *testing.T) {
	svc := NewService(memory.NewContentRepository())
	ctx := context.Background()

	item := newItem(uuid.New(), model.PlatformFacebook)
	require.NoError(t, svc.Create(ctx, item))

	_, err := svc.Get(ctx, uuid.New(), item.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Code(err))
}
