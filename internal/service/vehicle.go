package service

import (
	"context"
	"errors"

	"github.com/fleetyard/gate-ops/internal/core"
	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// VehicleService exposes vehicle lookups to the HTTP layer.
type VehicleService struct {
	vehicles core.VehicleRepository
}

// NewVehicleService constructs a VehicleService.
func NewVehicleService(vehicles core.VehicleRepository) (*VehicleService, error) {
	if vehicles == nil {
		return nil, errors.New("vehicle repository is required")
	}
	return &VehicleService{vehicles: vehicles}, nil
}

// SearchByPlate returns vehicles whose plate contains the query.
func (s *VehicleService) SearchByPlate(ctx context.Context, plate string) ([]model.Vehicle, error) {
	return s.vehicles.SearchByPlate(ctx, plate)
}

// GetByID retrieves a vehicle by ID.
func (s *VehicleService) GetByID(ctx context.Context, id string) (model.Vehicle, error) {
	return s.vehicles.GetByID(ctx, id)
}
