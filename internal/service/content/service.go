package content

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
)

type Servicer interface {
	Create(ctx context.Context, item *model.ContentItem) error
	Get(ctx context.Context, dealerID, id uuid.UUID) (*model.ContentItem, error)
	List(ctx context.Context, dealerID uuid.UUID, status string) ([]*model.ContentItem, error)
	Update(ctx context.Context, item *model.ContentItem) error
	Approve(ctx context.Context, dealerID, id uuid.UUID) (*model.ContentItem, error)
	Schedule(ctx context.Context, dealerID, id uuid.UUID, at time.Time) (*model.ContentItem, error)
	Delete(ctx context.Context, dealerID, id uuid.UUID) error
}

type Service struct {
	repo repository.ContentRepository
}

func NewService(repo repository.ContentRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, item *model.ContentItem) error {
	if !model.ValidPlatform(item.Platform) {
		return apperrors.BadRequest("unknown platform", nil)
	}
	if item.Body == "" {
		return apperrors.BadRequest("body is required", nil)
	}
	if item.Platform == model.PlatformInstagram && item.ImageURL == "" {
		return apperrors.BadRequest("instagram posts require an image", nil)
	}

	item.Status = model.ContentStatusDraft
	if err := s.repo.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to create content item: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, dealerID, id uuid.UUID) (*model.ContentItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.DealerID != dealerID {
		return nil, apperrors.NotFound("content item", nil)
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, dealerID uuid.UUID, status string) ([]*model.ContentItem, error) {
	return s.repo.List(ctx, dealerID, status)
}

func (s *Service) Update(ctx context.Context, item *model.ContentItem) error {
	existing, err := s.Get(ctx, item.DealerID, item.ID)
	if err != nil {
		return err
	}
	if existing.Status == model.ContentStatusPosting || existing.Status == model.ContentStatusPosted {
		return apperrors.Conflict("cannot edit a posted item", nil)
	}
	if !model.ValidPlatform(item.Platform) {
		return apperrors.BadRequest("unknown platform", nil)
	}

	// Edits send the item back through review.
	item.Status = model.ContentStatusDraft
	item.ScheduledAt = existing.ScheduledAt
	return s.repo.Update(ctx, item)
}

func (s *Service) Approve(ctx context.Context, dealerID, id uuid.UUID) (*model.ContentItem, error) {
	item, err := s.Get(ctx, dealerID, id)
	if err != nil {
		return nil, err
	}
	if item.Status != model.ContentStatusDraft {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot approve item in status %q", item.Status), nil)
	}

	item.Status = model.ContentStatusApproved
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Schedule(ctx context.Context, dealerID, id uuid.UUID, at time.Time) (*model.ContentItem, error) {
	item, err := s.Get(ctx, dealerID, id)
	if err != nil {
		return nil, err
	}
	if item.Status != model.ContentStatusApproved {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot schedule item in status %q", item.Status), nil)
	}
	if !at.After(time.Now()) {
		return nil, apperrors.BadRequest("scheduled date must be in the future", nil)
	}

	item.Status = model.ContentStatusScheduled
	item.ScheduledAt = &at
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, dealerID, id)
}
