package vehicle

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/logger"
)

type Servicer interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	Get(ctx context.Context, dealerID, id uuid.UUID) (*model.Vehicle, error)
	List(ctx context.Context, dealerID uuid.UUID, status string) ([]*model.Vehicle, error)
	Update(ctx context.Context, vehicle *model.Vehicle) error
	Delete(ctx context.Context, dealerID, id uuid.UUID) error
}

type Service struct {
	repo    repository.VehicleRepository
	dealers repository.DealerRepository
	logger  *logger.Logger
}

func NewService(repo repository.VehicleRepository, dealers repository.DealerRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, dealers: dealers, logger: logger}
}

// Create adds a vehicle after reserving a slot against the dealer's plan
// quota. The slot is released again if the insert fails.
func (s *Service) Create(ctx context.Context, vehicle *model.Vehicle) error {
	if vehicle.Make == "" || vehicle.Model == "" {
		return apperrors.BadRequest("make and model are required", nil)
	}
	if vehicle.Status == "" {
		vehicle.Status = model.VehicleStatusAvailable
	}

	dealer, err := s.dealers.Get(ctx, vehicle.DealerID)
	if err != nil {
		return err
	}

	limit := model.PlanVehicleLimit(dealer.Plan)
	ok, err := s.dealers.ReserveVehicleSlot(ctx, dealer.ID, limit)
	if err != nil {
		return fmt.Errorf("failed to reserve vehicle slot: %w", err)
	}
	if !ok {
		return apperrors.Conflict(fmt.Sprintf("vehicle limit reached for plan %q (%d)", dealer.Plan, limit), nil)
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		if relErr := s.dealers.ReleaseVehicleSlot(ctx, dealer.ID); relErr != nil {
			s.logger.Error(relErr, "failed to release vehicle slot after create failure", map[string]interface{}{
				"dealer_id": dealer.ID,
			})
		}
		return err
	}
	return nil
}

func (s *Service) Get(ctx context.Context, dealerID, id uuid.UUID) (*model.Vehicle, error) {
	vehicle, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if vehicle.DealerID != dealerID {
		return nil, apperrors.NotFound("vehicle", nil)
	}
	return vehicle, nil
}

func (s *Service) List(ctx context.Context, dealerID uuid.UUID, status string) ([]*model.Vehicle, error) {
	return s.repo.List(ctx, dealerID, status)
}

func (s *Service) Update(ctx context.Context, vehicle *model.Vehicle) error {
	if _, err := s.Get(ctx, vehicle.DealerID, vehicle.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, vehicle)
}

func (s *Service) Delete(ctx context.Context, dealerID, id uuid.UUID) error {
	if _, err := s.Get(ctx, dealerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, dealerID, id); err != nil {
		return err
	}
	if err := s.dealers.ReleaseVehicleSlot(ctx, dealerID); err != nil {
		s.logger.Error(err, "failed to release vehicle slot after delete", map[string]interface{}{
			"dealer_id": dealerID,
		})
	}
	return nil
}
