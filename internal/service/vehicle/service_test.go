package vehicle

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motoyard/motoyard-api/internal/model"
	"github.com/motoyard/motoyard-api/internal/repository/memory"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/logger"
)

func newVehicle(dealer *model.Dealer, n int) *model.Vehicle {
	return &model.Vehicle{
		DealerID: dealer.ID,
		Make:     "Toyota",
		Model:    fmt.Sprintf("Corolla %d", n),
		Year:     2019,
		Price:    1250000,
	}
}

func TestCreateEnforcesPlanQuota(t *testing.T) {
	dealers := memory.NewDealerRepository()
	vehicles := memory.NewVehicleRepository()
	svc := NewService(vehicles, dealers, logger.NewLogger(nil))
	ctx := context.Background()

	dealer := &model.Dealer{Name: "Yard One", Email: "one@example.com", Plan: model.PlanStarter}
	require.NoError(t, dealers.Create(ctx, dealer))

	limit := model.PlanVehicleLimit(model.PlanStarter)
	for i := 0; i < limit; i++ {
		require.NoError(t, svc.Create(ctx, newVehicle(dealer, i)))
	}

	err := svc.Create(ctx, newVehicle(dealer, limit))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrConflict, apperrors.Code(err))

	listed, err := svc.List(ctx, dealer.ID, "")
	require.NoError(t, err)
	assert.Len(t, listed, limit)
}

func TestDeleteReleasesQuotaSlot(t *testing.T) {
	dealers := memory.NewDealerRepository()
	vehicles := memory.NewVehicleRepository()
	svc := NewService(vehicles, dealers, logger.NewLogger(nil))
	ctx := context.Background()

	dealer := &model.Dealer{Name: "Yard One", Email: "one@example.com", Plan: model.PlanStarter}
	require.NoError(t, dealers.Create(ctx, dealer))

	limit := model.PlanVehicleLimit(model.PlanStarter)
	var last *model.Vehicle
	for i := 0; i < limit; i++ {
		last = newVehicle(dealer, i)
		require.NoError(t, svc.Create(ctx, last))
	}

	require.NoError(t, svc.Delete(ctx, dealer.ID, last.ID))

	// The freed slot accepts a new vehicle.
	require.NoError(t, svc.Create(ctx, newVehicle(dealer, limit)))
}

func TestCreateDefaultsStatus(t *testing.T) {
	dealers := memory.NewDealerRepository()
	vehicles := memory.NewVehicleRepository()
	svc := NewService(vehicles, dealers, logger.NewLogger(nil))
	ctx := context.Background()

	dealer := &model.Dealer{Name: "Yard One", Email: "one@example.com", Plan: model.PlanPro}
	require.NoError(t, dealers.Create(ctx, dealer))

	v := newVehicle(dealer, 0)
	require.NoError(t, svc.Create(ctx, v))
	assert.Equal(t, model.VehicleStatusAvailable, v.Status)
}

func TestGetCrossTenant(t *testing.T) {
	dealers := memory.NewDealerRepository()
	vehicles := memory.NewVehicleRepository()
	svc := NewService(vehicles, dealers, logger.NewLogger(nil))
	ctx := context.Background()

	dealer := &model.Dealer{Name: "Yard One", Email: "one@example.com", Plan: model.PlanPro}
	require.NoError(t, dealers.Create(ctx, dealer))
	other := &model.Dealer{Name: "Yard Two", Email: "two@example.com", Plan: model.PlanPro}
	require.NoError(t, dealers.Create(ctx, other))

	v := newVehicle(dealer, 0)
	require.NoError(t, svc.Create(ctx, v))

	_, err := svc.Get(ctx, other.ID, v.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.Code(err))
}
