// Package domain contains core business types and interfaces.
//
// This file defines the storage collaborators the inspection service
// depends on. Implementations live in the repository package.
package domain

import (
	"context"

	"github.com/google/uuid"
)

// InspectionStore persists inspection records.
//
// Missing records are reported with ENOTFOUND.
type InspectionStore interface {
	// Save inserts the record, or replaces every field of an existing
	// record with the same ID.
	Save(ctx context.Context, rec *InspectionRecord) error

	// Update replaces every field except CreatedAt of an existing record.
	// It never inserts: a record deleted in the meantime is ENOTFOUND.
	Update(ctx context.Context, rec *InspectionRecord) error

	// FindByID returns the record. Inside a transaction the row stays
	// locked until commit or rollback.
	FindByID(ctx context.Context, id uuid.UUID) (*InspectionRecord, error)

	// FindByPlate returns the plate's inspections, newest first.
	FindByPlate(ctx context.Context, plate string) ([]InspectionRecord, error)

	DeleteByID(ctx context.Context, id uuid.UUID) error

	// FindAll returns every inspection, newest first.
	FindAll(ctx context.Context) ([]InspectionRecord, error)
}

// VehicleStore persists vehicle fleet records.
type VehicleStore interface {
	// FindByPlate returns the vehicle with the plate. Inside a transaction
	// the row stays locked until commit or rollback.
	FindByPlate(ctx context.Context, plate string) (*VehicleFleetRecord, error)

	// Save updates the fleet record identified by v.ID.
	Save(ctx context.Context, v *VehicleFleetRecord) error

	// Provision inserts v unless a vehicle with the same plate exists, and
	// returns whichever record is stored. It reports whether v was inserted.
	Provision(ctx context.Context, v *VehicleFleetRecord) (*VehicleFleetRecord, bool, error)
}

// Stores groups the collaborators so they can share one transaction.
type Stores struct {
	Inspections InspectionStore
	Vehicles    VehicleStore
}

// Transactor runs units of work that must commit or roll back together.
type Transactor interface {
	// Stores returns collaborators that run outside any transaction.
	Stores() Stores

	// WithinTx runs fn with transactional collaborators. The transaction
	// is committed if fn returns nil and rolled back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}
