// Package domain contains core business types and interfaces.
//
// This file defines the vehicle fleet record: the authoritative summary
// state that assignment, routing and attendance read.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Vehicle Kind
// =============================================================================

// VehicleKind distinguishes the two vehicle variants the fleet manages.
type VehicleKind string

const (
	// VehicleKindCar is a pool car. Auto-provisioned vehicles are cars.
	VehicleKindCar VehicleKind = "car"

	// VehicleKindOrganizationCar is a car owned by a partner organization.
	VehicleKindOrganizationCar VehicleKind = "organization_car"
)

// IsValid returns true if the kind is a recognized value.
func (k VehicleKind) IsValid() bool {
	return k == VehicleKindCar || k == VehicleKindOrganizationCar
}

// OwnerLabel returns how the owner column is presented for this kind.
func (k VehicleKind) OwnerLabel() string {
	switch k {
	case VehicleKindOrganizationCar:
		return "organization"
	default:
		return "owner"
	}
}

// =============================================================================
// Fleet Status
// =============================================================================

// FleetStatus is the lifecycle string stored on the vehicle. The inspection
// engine writes the three values below; other subsystems may write others.
type FleetStatus string

const (
	FleetStatusPendingInspection  FleetStatus = "pending-inspection"
	FleetStatusInspectedAndReady  FleetStatus = "inspected-and-ready"
	FleetStatusInspectionRejected FleetStatus = "inspection-rejected"
)

func (s FleetStatus) String() string {
	return string(s)
}

// =============================================================================
// Vehicle Fleet Record
// =============================================================================

// Placeholder values written when a plate is inspected before the vehicle
// was registered.
const (
	PlaceholderOwner = "UNKNOWN"
	PlaceholderModel = "UNKNOWN"
)

// VehicleFleetRecord is the vehicle's authoritative fleet state.
type VehicleFleetRecord struct {
	ID                 uuid.UUID
	Kind               VehicleKind
	PlateNumber        string // Unique, normalized with NormalizePlate
	OwnerName          string
	Model              string
	MileageKM          float64
	FuelEfficiency     float64 // km per liter
	LatestInspectionID *uuid.UUID
	EverInspected      bool
	FleetStatus        FleetStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewPlaceholderVehicle returns the record auto-provisioned for a plate that
// has no vehicle yet.
func NewPlaceholderVehicle(plate string, now time.Time) *VehicleFleetRecord {
	return &VehicleFleetRecord{
		ID:             uuid.New(),
		Kind:           VehicleKindCar,
		PlateNumber:    NormalizePlate(plate),
		OwnerName:      PlaceholderOwner,
		Model:          PlaceholderModel,
		MileageKM:      0,
		FuelEfficiency: 0,
		EverInspected:  false,
		FleetStatus:    FleetStatusPendingInspection,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// HasLatestInspection returns true if the vehicle points at an inspection.
func (v *VehicleFleetRecord) HasLatestInspection() bool {
	return v.LatestInspectionID != nil
}

// IsLatestInspection returns true if id is the vehicle's latest inspection.
func (v *VehicleFleetRecord) IsLatestInspection(id uuid.UUID) bool {
	return v.HasLatestInspection() && *v.LatestInspectionID == id
}

// NormalizePlate trims and upper-cases a plate number so lookups are
// insensitive to how the inspector typed it.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
