package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// Vehicle is a row of the vehicles table.
type Vehicle struct {
	ID                 uuid.UUID
	Kind               string
	PlateNumber        string
	OwnerName          string
	Model              string
	MileageKm          float64
	FuelEfficiency     float64
	FleetStatus        string
	EverInspected      bool
	LatestInspectionID uuid.NullUUID
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Inspection is a row of the inspections table.
type Inspection struct {
	ID            uuid.UUID
	VehicleID     uuid.UUID
	PlateNumber   string
	InspectorName string
	Mechanical    pqtype.NullRawMessage
	Body          pqtype.NullRawMessage
	Interior      pqtype.NullRawMessage
	BodyScore     int32
	InteriorScore int32
	Status        string
	Readiness     string
	Notes         sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
