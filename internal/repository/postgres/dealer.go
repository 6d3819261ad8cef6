package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
)

type dealerRepository struct {
	db *sqlx.DB
}

func NewDealerRepository(db *sqlx.DB) repository.DealerRepository {
	return &dealerRepository{db: db}
}

const dealerColumns = `
	id, name, email, password_hash, plan, vehicle_count,
	facebook_page_id, instagram_id, waba_id, whatsapp_phone_id, meta_access_token,
	linkedin_org_urn, linkedin_access_token,
	created_at, updated_at
`

func (r *dealerRepository) Create(ctx context.Context, dealer *model.Dealer) error {
	query := `
		INSERT INTO dealers (
			id, name, email, password_hash, plan, vehicle_count,
			facebook_page_id, instagram_id, waba_id, whatsapp_phone_id, meta_access_token,
			linkedin_org_urn, linkedin_access_token,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`
	dealer.ID = uuid.New()
	dealer.CreatedAt = time.Now()
	dealer.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		dealer.ID,
		dealer.Name,
		dealer.Email,
		dealer.PasswordHash,
		dealer.Plan,
		dealer.VehicleCount,
		dealer.FacebookPageID,
		dealer.InstagramID,
		dealer.WABAID,
		dealer.WhatsAppPhoneID,
		dealer.MetaAccessToken,
		dealer.LinkedInOrgURN,
		dealer.LinkedInAccessToken,
		dealer.CreatedAt,
		dealer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create dealer: %w", err)
	}
	return nil
}

func (r *dealerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Dealer, error) {
	query := `SELECT ` + dealerColumns + ` FROM dealers WHERE id = $1`

	var dealer model.Dealer
	err := r.db.GetContext(ctx, &dealer, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("dealer", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dealer: %w", err)
	}
	return &dealer, nil
}

func (r *dealerRepository) GetByEmail(ctx context.Context, email string) (*model.Dealer, error) {
	query := `SELECT ` + dealerColumns + ` FROM dealers WHERE email = $1`

	var dealer model.Dealer
	err := r.db.GetContext(ctx, &dealer, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("dealer", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dealer by email: %w", err)
	}
	return &dealer, nil
}

func (r *dealerRepository) GetByWhatsAppPhoneID(ctx context.Context, phoneID string) (*model.Dealer, error) {
	query := `SELECT ` + dealerColumns + ` FROM dealers WHERE whatsapp_phone_id = $1`

	var dealer model.Dealer
	err := r.db.GetContext(ctx, &dealer, query, phoneID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("dealer", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dealer by phone id: %w", err)
	}
	return &dealer, nil
}

func (r *dealerRepository) Update(ctx context.Context, dealer *model.Dealer) error {
	query := `
		UPDATE dealers
		SET name = $1, plan = $2,
			facebook_page_id = $3, instagram_id = $4, waba_id = $5,
			whatsapp_phone_id = $6, meta_access_token = $7,
			linkedin_org_urn = $8, linkedin_access_token = $9,
			updated_at = $10
		WHERE id = $11
	`
	dealer.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		dealer.Name,
		dealer.Plan,
		dealer.FacebookPageID,
		dealer.InstagramID,
		dealer.WABAID,
		dealer.WhatsAppPhoneID,
		dealer.MetaAccessToken,
		dealer.LinkedInOrgURN,
		dealer.LinkedInAccessToken,
		dealer.UpdatedAt,
		dealer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update dealer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("dealer", nil)
	}
	return nil
}

func (r *dealerRepository) List(ctx context.Context) ([]*model.Dealer, error) {
	query := `SELECT ` + dealerColumns + ` FROM dealers ORDER BY created_at`

	var dealers []*model.Dealer
	if err := r.db.SelectContext(ctx, &dealers, query); err != nil {
		return nil, fmt.Errorf("failed to list dealers: %w", err)
	}
	return dealers, nil
}

func (r *dealerRepository) ReserveVehicleSlot(ctx context.Context, id uuid.UUID, limit int) (bool, error) {
	// Conditional increment keeps the quota check and the bump in one
	// statement, so concurrent creates cannot both pass the limit.
	query := `
		UPDATE dealers
		SET vehicle_count = vehicle_count + 1, updated_at = $1
		WHERE id = $2 AND vehicle_count < $3
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id, limit)
	if err != nil {
		return false, fmt.Errorf("failed to reserve vehicle slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *dealerRepository) ReleaseVehicleSlot(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE dealers
		SET vehicle_count = GREATEST(vehicle_count - 1, 0), updated_at = $1
		WHERE id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("failed to release vehicle slot: %w", err)
	}
	return nil
}
