package service

import (
	"context"
	"log/slog"

	"github.com/DukeRupert/fleet/internal/domain"
)

// VehicleService exposes the fleet record other subsystems read.
type VehicleService interface {
	// GetByPlate returns the vehicle's fleet record.
	// Returns domain.ENOTFOUND if no vehicle has the plate.
	GetByPlate(ctx context.Context, plate string) (*domain.VehicleFleetRecord, error)
}

type vehicleService struct {
	store  domain.Transactor
	logger *slog.Logger
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(store domain.Transactor, logger *slog.Logger) VehicleService {
	return &vehicleService{
		store:  store,
		logger: logger,
	}
}

func (s *vehicleService) GetByPlate(ctx context.Context, plate string) (*domain.VehicleFleetRecord, error) {
	const op = "vehicle.get"

	plate = domain.NormalizePlate(plate)
	if plate == "" {
		return nil, domain.Invalid(op, "plate number is required")
	}

	vehicle, err := s.store.Stores().Vehicles.FindByPlate(ctx, plate)
	if err != nil {
		if domain.ErrorCode(err) == domain.EINTERNAL {
			s.logger.Error("failed to get vehicle", "plate_number", plate, "error", err)
		}
		return nil, wrapStoreError(op, err, "failed to get vehicle")
	}
	return vehicle, nil
}
