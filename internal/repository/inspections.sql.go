package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const inspectionColumns = `id, vehicle_id, plate_number, inspector_name, mechanical, body, interior,
       body_score, interior_score, status, readiness, notes, created_at, updated_at`

const upsertInspection = `INSERT INTO inspections (
    id, vehicle_id, plate_number, inspector_name, mechanical, body, interior,
    body_score, interior_score, status, readiness, notes, created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
)
ON CONFLICT (id) DO UPDATE
SET vehicle_id = EXCLUDED.vehicle_id,
    plate_number = EXCLUDED.plate_number,
    inspector_name = EXCLUDED.inspector_name,
    mechanical = EXCLUDED.mechanical,
    body = EXCLUDED.body,
    interior = EXCLUDED.interior,
    body_score = EXCLUDED.body_score,
    interior_score = EXCLUDED.interior_score,
    status = EXCLUDED.status,
    readiness = EXCLUDED.readiness,
    notes = EXCLUDED.notes,
    updated_at = EXCLUDED.updated_at`

type UpsertInspectionParams struct {
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

// UpsertInspection inserts the inspection or replaces every column except
// created_at.
func (q *Queries) UpsertInspection(ctx context.Context, arg UpsertInspectionParams) error {
	_, err := q.db.ExecContext(ctx, upsertInspection,
		arg.ID,
		arg.VehicleID,
		arg.PlateNumber,
		arg.InspectorName,
		arg.Mechanical,
		arg.Body,
		arg.Interior,
		arg.BodyScore,
		arg.InteriorScore,
		arg.Status,
		arg.Readiness,
		arg.Notes,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getInspectionByID = `SELECT ` + inspectionColumns + `
FROM inspections
WHERE id = $1`

func (q *Queries) GetInspectionByID(ctx context.Context, id uuid.UUID) (Inspection, error) {
	row := q.db.QueryRowContext(ctx, getInspectionByID, id)
	return scanInspection(row)
}

const getInspectionByIDForUpdate = getInspectionByID + `
FOR UPDATE`

// GetInspectionByIDForUpdate locks the row until the transaction ends.
func (q *Queries) GetInspectionByIDForUpdate(ctx context.Context, id uuid.UUID) (Inspection, error) {
	row := q.db.QueryRowContext(ctx, getInspectionByIDForUpdate, id)
	return scanInspection(row)
}

const updateInspection = `UPDATE inspections
SET vehicle_id = $2,
    plate_number = $3,
    inspector_name = $4,
    mechanical = $5,
    body = $6,
    interior = $7,
    body_score = $8,
    interior_score = $9,
    status = $10,
    readiness = $11,
    notes = $12,
    updated_at = $13
WHERE id = $1`

type UpdateInspectionParams struct {
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
	UpdatedAt     time.Time
}

// UpdateInspection returns the number of updated rows: 0 when the
// inspection does not exist.
func (q *Queries) UpdateInspection(ctx context.Context, arg UpdateInspectionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateInspection,
		arg.ID,
		arg.VehicleID,
		arg.PlateNumber,
		arg.InspectorName,
		arg.Mechanical,
		arg.Body,
		arg.Interior,
		arg.BodyScore,
		arg.InteriorScore,
		arg.Status,
		arg.Readiness,
		arg.Notes,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listInspectionsByPlate = `SELECT ` + inspectionColumns + `
FROM inspections
WHERE plate_number = $1
ORDER BY created_at DESC, id`

func (q *Queries) ListInspectionsByPlate(ctx context.Context, plateNumber string) ([]Inspection, error) {
	rows, err := q.db.QueryContext(ctx, listInspectionsByPlate, plateNumber)
	if err != nil {
		return nil, err
	}
	return collectInspections(rows)
}

const listInspections = `SELECT ` + inspectionColumns + `
FROM inspections
ORDER BY created_at DESC, id`

func (q *Queries) ListInspections(ctx context.Context) ([]Inspection, error) {
	rows, err := q.db.QueryContext(ctx, listInspections)
	if err != nil {
		return nil, err
	}
	return collectInspections(rows)
}

const deleteInspection = `DELETE FROM inspections
WHERE id = $1`

// DeleteInspection returns the number of deleted rows.
func (q *Queries) DeleteInspection(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteInspection, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func collectInspections(rows *sql.Rows) ([]Inspection, error) {
	defer rows.Close()
	var items []Inspection
	for rows.Next() {
		i, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanInspection(row rowScanner) (Inspection, error) {
	var i Inspection
	err := row.Scan(
		&i.ID,
		&i.VehicleID,
		&i.PlateNumber,
		&i.InspectorName,
		&i.Mechanical,
		&i.Body,
		&i.Interior,
		&i.BodyScore,
		&i.InteriorScore,
		&i.Status,
		&i.Readiness,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
