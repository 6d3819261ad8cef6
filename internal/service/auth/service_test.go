package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository/memory"
	"github.com/motoyard/motoyard-api/pkg/auth"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
)

func newAuthService() (*Service, *memory.DealerRepository) {
	dealers := memory.NewDealerRepository()
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        "test-secret",
		RefreshSecret: "test-refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
	return NewService(dealers, jwtSvc, time.Hour), dealers
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	dealer, err := svc.Register(ctx, "Yard One", "one@example.com", "s3cret-pass", "")
	require.NoError(t, err)
	assert.Equal(t, model.PlanStarter, dealer.Plan, "plan defaults to starter")
	assert.NotEqual(t, "s3cret-pass", dealer.PasswordHash)

	tokens, err := svc.Login(ctx, "one@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, int64(3600), tokens.ExpiresIn)

	claims, err := svc.ValidateToken(ctx, tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, dealer.ID, claims.DealerID)
	assert.Equal(t, "one@example.com", claims.Email)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Yard", "short@example.com", "short", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))

	_, err = svc.Register(ctx, "Yard", "plan@example.com", "s3cret-pass", "platinum")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.Code(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Yard One", "one@example.com", "s3cret-pass", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Yard Two", "one@example.com", "other-pass1", "")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.Code(err))
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Yard One", "one@example.com", "s3cret-pass", "")
	require.NoError(t, err)

	// Wrong password and unknown email fail the same way.
	_, err = svc.Login(ctx, "one@example.com", "wrong-pass")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.Code(err))

	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.Code(err))
}

func TestRefresh(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Yard One", "one@example.com", "s3cret-pass", "")
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, "one@example.com", "s3cret-pass")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not a refresh token.
	_, err = svc.Refresh(ctx, tokens.AccessToken)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.Code(err))
}
