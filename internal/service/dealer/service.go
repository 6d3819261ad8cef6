package dealer

import (
	"context"

	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
)

// ProfileUpdate carries the dealer-editable profile fields.
type ProfileUpdate struct {
	Name string `json:"name"`
	Plan string `json:"plan"`
}

// CredentialsUpdate carries platform credentials. Empty fields leave the
// stored value untouched so dealers can rotate one token at a time.
type CredentialsUpdate struct {
	FacebookPageID      string `json:"facebook_page_id"`
	InstagramID         string `json:"instagram_id"`
	WABAID              string `json:"waba_id"`
	WhatsAppPhoneID     string `json:"whatsapp_phone_id"`
	MetaAccessToken     string `json:"meta_access_token"`
	LinkedInOrgURN      string `json:"linkedin_org_urn"`
	LinkedInAccessToken string `json:"linkedin_access_token"`
}

type Servicer interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Dealer, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update *ProfileUpdate) (*model.Dealer, error)
	UpdateCredentials(ctx context.Context, id uuid.UUID, update *CredentialsUpdate) (*model.Dealer, error)
}

type Service struct {
	repo repository.DealerRepository
}

func NewService(repo repository.DealerRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Dealer, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, update *ProfileUpdate) (*model.Dealer, error) {
	dealer, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != "" {
		dealer.Name = update.Name
	}
	if update.Plan != "" {
		switch update.Plan {
		case model.PlanStarter, model.PlanPro, model.PlanEnterprise:
			// Downgrades keep existing inventory; the quota only gates new
			// vehicles.
			dealer.Plan = update.Plan
		default:
			return nil, apperrors.BadRequest("unknown plan", nil)
		}
	}

	if err := s.repo.Update(ctx, dealer); err != nil {
		return nil, err
	}
	return dealer, nil
}

func (s *Service) UpdateCredentials(ctx context.Context, id uuid.UUID, update *CredentialsUpdate) (*model.Dealer, error) {
	dealer, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.FacebookPageID != "" {
		dealer.FacebookPageID = update.FacebookPageID
	}
	if update.InstagramID != "" {
		dealer.InstagramID = update.InstagramID
	}
	if update.WABAID != "" {
		dealer.WABAID = update.WABAID
	}
	if update.WhatsAppPhoneID != "" {
		dealer.WhatsAppPhoneID = update.WhatsAppPhoneID
	}
	if update.MetaAccessToken != "" {
		dealer.MetaAccessToken = update.MetaAccessToken
	}
	if update.LinkedInOrgURN != "" {
		dealer.LinkedInOrgURN = update.LinkedInOrgURN
	}
	if update.LinkedInAccessToken != "" {
		dealer.LinkedInAccessToken = update.LinkedInAccessToken
	}

	if err := s.repo.Update(ctx, dealer); err != nil {
		return nil, err
	}
	return dealer, nil
}
