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

type vehicleRepository struct {
	db *sqlx.DB
}

func NewVehicleRepository(db *sqlx.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	query := `
		INSERT INTO vehicles (
			id, dealer_id, make, model, year, price, mileage, status,
			description, image_urls, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`
	vehicle.ID = uuid.New()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		vehicle.ID,
		vehicle.DealerID,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
		vehicle.Price,
		vehicle.Mileage,
		vehicle.Status,
		vehicle.Description,
		vehicle.ImageURLs,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (r *vehicleRepository) Get(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	query := `
		SELECT id, dealer_id, make, model, year, price, mileage, status,
			description, image_urls, created_at, updated_at
		FROM vehicles
		WHERE id = $1
	`
	var vehicle model.Vehicle
	err := r.db.GetContext(ctx, &vehicle, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("vehicle", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return &vehicle, nil
}

func (r *vehicleRepository) List(ctx context.Context, dealerID uuid.UUID, status string) ([]*model.Vehicle, error) {
	query := `
		SELECT id, dealer_id, make, model, year, price, mileage, status,
			description, image_urls, created_at, updated_at
		FROM vehicles
		WHERE dealer_id = $1
		AND (COALESCE($2, '') = '' OR status = $2)
		ORDER BY created_at DESC
	`
	var vehicles []*model.Vehicle
	if err := r.db.SelectContext(ctx, &vehicles, query, dealerID, status); err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *model.Vehicle) error {
	query := `
		UPDATE vehicles
		SET make = $1, model = $2, year = $3, price = $4, mileage = $5,
			status = $6, description = $7, image_urls = $8, updated_at = $9
		WHERE id = $10 AND dealer_id = $11
	`
	vehicle.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		vehicle.Make,
		vehicle.Model,
		vehicle.Year,
		vehicle.Price,
		vehicle.Mileage,
		vehicle.Status,
		vehicle.Description,
		vehicle.ImageURLs,
		vehicle.UpdatedAt,
		vehicle.ID,
		vehicle.DealerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vehicle: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("vehicle", nil)
	}
	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	query := `DELETE FROM vehicles WHERE id = $1 AND dealer_id = $2`

	result, err := r.db.ExecContext(ctx, query, id, dealerID)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("vehicle", nil)
	}
	return nil
}
