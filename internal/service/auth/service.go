package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository"
	"github.com/motoyard/motoyard-api/pkg/auth"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
)

const bcryptCost = 12

type Servicer interface {
	Register(ctx context.Context, name, email, password, plan string) (*model.Dealer, error)
	Login(ctx context.Context, email, password string) (*model.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

type Service struct {
	dealers repository.DealerRepository
	jwtSvc  auth.JWTService
	expiry  time.Duration
}

func NewService(dealers repository.DealerRepository, jwtSvc auth.JWTService, expiry time.Duration) *Service {
	return &Service{
		dealers: dealers,
		jwtSvc:  jwtSvc,
		expiry:  expiry,
	}
}

func (s *Service) Register(ctx context.Context, name, email, password, plan string) (*model.Dealer, error) {
	if len(password) < 8 {
		return nil, apperrors.BadRequest("password must be at least 8 characters", nil)
	}
	if plan == "" {
		plan = model.PlanStarter
	}
	if plan != model.PlanStarter && plan != model.PlanPro && plan != model.PlanEnterprise {
		return nil, apperrors.BadRequest("unknown plan", nil)
	}

	if _, err := s.dealers.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("email already registered", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	dealer := &model.Dealer{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Plan:         plan,
	}
	if err := s.dealers.Create(ctx, dealer); err != nil {
		return nil, fmt.Errorf("failed to create dealer: %w", err)
	}
	return dealer, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	dealer, err := s.dealers.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dealer.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	return s.issueTokens(dealer)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	dealerID, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	dealer, err := s.dealers.Get(ctx, dealerID)
	if err != nil {
		return nil, apperrors.Unauthorized(fmt.Errorf("dealer not found"))
	}

	return s.issueTokens(dealer)
}

func (s *Service) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return claims, nil
}

func (s *Service) issueTokens(dealer *model.Dealer) (*model.TokenResponse, error) {
	access, err := s.jwtSvc.GenerateAccessToken(dealer.ID, dealer.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(dealer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.expiry.Seconds()),
	}, nil
}
