package template

import (
	"context"

	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
)

type Servicer interface {
	Create(ctx context.Context, tmpl *model.Template) error
	Get(ctx context.Context, dealerID, id uuid.UUID) (*model.Template, error)
	List(ctx context.Context, dealerID uuid.UUID) ([]*model.Template, error)
	Update(ctx context.Context, tmpl *model.Template) error
	SetStatus(ctx context.Context, dealerID, id uuid.UUID, status string) (*model.Template, error)
	Delete(ctx context.Context, dealerID, id uuid.UUID) error
}

type Service struct {
	repo repository.TemplateRepository
}

func NewService(repo repository.TemplateRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, tmpl *model.Template) error {
	if tmpl.Name == "" || tmpl.Body == "" {
		return apperrors.BadRequest("name and body are required", nil)
	}
	if tmpl.Language == "" {
		tmpl.Language = "en"
	}
	tmpl.Status = model.TemplateStatusPending
	return s.repo.Create(ctx, tmpl)
}

func (s *Service) Get(ctx context.Context, dealerID, id uuid.UUID) (*model.Template, error) {
	tmpl, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl.DealerID != dealerID {
		return nil, apperrors.NotFound("template", nil)
	}
	return tmpl, nil
}

func (s *Service) List(ctx context.Context, dealerID uuid.UUID) ([]*model.Template, error) {
	return s.repo.List(ctx, dealerID)
}

func (s *Service) Update(ctx context.Context, tmpl *model.Template) error {
	if _, err := s.Get(ctx, tmpl.DealerID, tmpl.ID); err != nil {
		return err
	}
	// Any edit invalidates provider approval.
	tmpl.Status = model.TemplateStatusPending
	return s.repo.Update(ctx, tmpl)
}

// SetStatus records the provider's review outcome for a template.
func (s *Service) SetStatus(ctx context.Context, dealerID, id uuid.UUID, status string) (*model.Template, error) {
	if status != model.TemplateStatusApproved && status != model.TemplateStatusRejected {
		return nil, apperrors.BadRequest("status must be approved or rejected", nil)
	}

	tmpl, err := s.Get(ctx, dealerID, id)
	if err != nil {
		return nil, err
	}
	tmpl.Status = status
	if err := s.repo.Update(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *Service) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, dealerID, id)
}
