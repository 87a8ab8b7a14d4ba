package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const vehicleColumns = `id, kind, plate_number, owner_name, model, mileage_km, fuel_efficiency,
       fleet_status, ever_inspected, latest_inspection_id, created_at, updated_at`

const getVehicleByPlate = `SELECT ` + vehicleColumns + `
FROM vehicles
WHERE plate_number = $1`

func (q *Queries) GetVehicleByPlate(ctx context.Context, plateNumber string) (Vehicle, error) {
	row := q.db.QueryRowContext(ctx, getVehicleByPlate, plateNumber)
	return scanVehicle(row)
}

const getVehicleByPlateForUpdate = getVehicleByPlate + `
FOR UPDATE`

// GetVehicleByPlateForUpdate locks the row until the transaction ends.
func (q *Queries) GetVehicleByPlateForUpdate(ctx context.Context, plateNumber string) (Vehicle, error) {
	row := q.db.QueryRowContext(ctx, getVehicleByPlateForUpdate, plateNumber)
	return scanVehicle(row)
}

const insertVehicleIfAbsent = `INSERT INTO vehicles (
    id, kind, plate_number, owner_name, model, mileage_km, fuel_efficiency,
    fleet_status, ever_inspected, latest_inspection_id, created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
)
ON CONFLICT (plate_number) DO NOTHING`

type InsertVehicleIfAbsentParams struct {
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

// InsertVehicleIfAbsent returns the number of inserted rows: 0 when the
// plate already exists.
func (q *Queries) InsertVehicleIfAbsent(ctx context.Context, arg InsertVehicleIfAbsentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertVehicleIfAbsent,
		arg.ID,
		arg.Kind,
		arg.PlateNumber,
		arg.OwnerName,
		arg.Model,
		arg.MileageKm,
		arg.FuelEfficiency,
		arg.FleetStatus,
		arg.EverInspected,
		arg.LatestInspectionID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updateVehicle = `UPDATE vehicles
SET kind = $2,
    owner_name = $3,
    model = $4,
    mileage_km = $5,
    fuel_efficiency = $6,
    fleet_status = $7,
    ever_inspected = $8,
    latest_inspection_id = $9,
    updated_at = NOW()
WHERE id = $1
RETURNING updated_at`

type UpdateVehicleParams struct {
	ID                 uuid.UUID
	Kind               string
	OwnerName          string
	Model              string
	MileageKm          float64
	FuelEfficiency     float64
	FleetStatus        string
	EverInspected      bool
	LatestInspectionID uuid.NullUUID
}

func (q *Queries) UpdateVehicle(ctx context.Context, arg UpdateVehicleParams) (Vehicle, error) {
	v := Vehicle{
		ID:                 arg.ID,
		Kind:               arg.Kind,
		OwnerName:          arg.OwnerName,
		Model:              arg.Model,
		MileageKm:          arg.MileageKm,
		FuelEfficiency:     arg.FuelEfficiency,
		FleetStatus:        arg.FleetStatus,
		EverInspected:      arg.EverInspected,
		LatestInspectionID: arg.LatestInspectionID,
	}
	err := q.db.QueryRowContext(ctx, updateVehicle,
		arg.ID,
		arg.Kind,
		arg.OwnerName,
		arg.Model,
		arg.MileageKm,
		arg.FuelEfficiency,
		arg.FleetStatus,
		arg.EverInspected,
		arg.LatestInspectionID,
	).Scan(&v.UpdatedAt)
	return v, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (Vehicle, error) {
	var v Vehicle
	err := row.Scan(
		&v.ID,
		&v.Kind,
		&v.PlateNumber,
		&v.OwnerName,
		&v.Model,
		&v.MileageKm,
		&v.FuelEfficiency,
		&v.FleetStatus,
		&v.EverInspected,
		&v.LatestInspectionID,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	return v, err
}
