package contact

import (
	"context"

	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
)

type Servicer interface {
	Create(ctx context.Context, contact *model.Contact) error
	Get(ctx context.Context, dealerID, id uuid.UUID) (*model.Contact, error)
	List(ctx context.Context, dealerID uuid.UUID) ([]*model.Contact, error)
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, dealerID, id uuid.UUID) error
}

type Service struct {
	repo repository.ContactRepository
}

func NewService(repo repository.ContactRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, contact *model.Contact) error {
	if contact.Phone == "" {
		return apperrors.BadRequest("phone is required", nil)
	}
	if contact.Source == "" {
		contact.Source = "manual"
	}
	return s.repo.Create(ctx, contact)
}

func (s *Service) Get(ctx context.Context, dealerID, id uuid.UUID) (*model.Contact, error) {
	contact, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if contact.DealerID != dealerID {
		return nil, apperrors.NotFound("contact", nil)
	}
	return contact, nil
}

func (s *Service) List(ctx context.Context, dealerID uuid.UUID) ([]*model.Contact, error) {
	return s.repo.List(ctx, dealerID)
}

func (s *Service) Update(ctx context.Context, contact *model.Contact) error {
	existing, err := s.Get(ctx, contact.DealerID, contact.ID)
	if err != nil {
		return err
	}
	// Phone is the dealer-scoped identity of a contact and never changes.
	contact.Phone = existing.Phone
	return s.repo.Update(ctx, contact)
}

func (s *Service) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, dealerID, id)
}
