package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/DukeRupert/fleet/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sqlc-dev/pqtype"
)

// Postgres error codes translated into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// =============================================================================
// Store
// =============================================================================

// Store exposes the Postgres-backed inspection and vehicle stores.
type Store struct {
	db      *sql.DB
	queries *Queries
}

// NewStore creates a Store on db.
//
// Example usage:
//
//	store := repository.NewStore(db)
//	svc := service.NewInspectionService(store, logger)
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		queries: New(db),
	}
}

// Stores returns collaborators bound to the connection pool.
func (s *Store) Stores() domain.Stores {
	return storesFor(s.queries, false)
}

// WithinTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back on error or panic; panics are re-raised. Inspections and
// vehicles read through the transactional stores are locked until the
// transaction ends.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, st domain.Stores) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit transaction: %w", cerr)
		}
	}()

	return fn(ctx, storesFor(s.queries.WithTx(tx), true))
}

func storesFor(q *Queries, inTx bool) domain.Stores {
	return domain.Stores{
		Inspections: &inspectionStore{queries: q, lockRows: inTx},
		Vehicles:    &vehicleStore{queries: q, lockRows: inTx},
	}
}

// =============================================================================
// Inspection Store
// =============================================================================

type inspectionStore struct {
	queries  *Queries
	lockRows bool
}

func (s *inspectionStore) Save(ctx context.Context, rec *domain.InspectionRecord) error {
	const op = "inspection.save"

	params, err := inspectionToParams(rec)
	if err != nil {
		return domain.Internal(err, op, "failed to encode inspection")
	}
	if err := s.queries.UpsertInspection(ctx, params); err != nil {
		return translateError(err, op, "failed to save inspection")
	}
	return nil
}

func (s *inspectionStore) Update(ctx context.Context, rec *domain.InspectionRecord) error {
	const op = "inspection.update"

	params, err := inspectionToParams(rec)
	if err != nil {
		return domain.Internal(err, op, "failed to encode inspection")
	}
	n, err := s.queries.UpdateInspection(ctx, UpdateInspectionParams{
		ID:            params.ID,
		VehicleID:     params.VehicleID,
		PlateNumber:   params.PlateNumber,
		InspectorName: params.InspectorName,
		Mechanical:    params.Mechanical,
		Body:          params.Body,
		Interior:      params.Interior,
		BodyScore:     params.BodyScore,
		InteriorScore: params.InteriorScore,
		Status:        params.Status,
		Readiness:     params.Readiness,
		Notes:         params.Notes,
		UpdatedAt:     params.UpdatedAt,
	})
	if err != nil {
		return translateError(err, op, "failed to update inspection")
	}
	if n == 0 {
		return domain.NotFound(op, "inspection", rec.ID.String())
	}
	return nil
}

func (s *inspectionStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.InspectionRecord, error) {
	const op = "inspection.find"

	var (
		row Inspection
		err error
	)
	if s.lockRows {
		row, err = s.queries.GetInspectionByIDForUpdate(ctx, id)
	} else {
		row, err = s.queries.GetInspectionByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "inspection", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get inspection")
	}
	return rowToInspection(row)
}

func (s *inspectionStore) FindByPlate(ctx context.Context, plate string) ([]domain.InspectionRecord, error) {
	const op = "inspection.find_by_plate"

	rows, err := s.queries.ListInspectionsByPlate(ctx, plate)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list inspections")
	}
	return rowsToInspections(rows)
}

func (s *inspectionStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	const op = "inspection.delete"

	n, err := s.queries.DeleteInspection(ctx, id)
	if err != nil {
		return domain.Internal(err, op, "failed to delete inspection")
	}
	if n == 0 {
		return domain.NotFound(op, "inspection", id.String())
	}
	return nil
}

func (s *inspectionStore) FindAll(ctx context.Context) ([]domain.InspectionRecord, error) {
	const op = "inspection.find_all"

	rows, err := s.queries.ListInspections(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list inspections")
	}
	return rowsToInspections(rows)
}

// =============================================================================
// Vehicle Store
// =============================================================================

type vehicleStore struct {
	queries  *Queries
	lockRows bool
}

func (s *vehicleStore) FindByPlate(ctx context.Context, plate string) (*domain.VehicleFleetRecord, error) {
	const op = "vehicle.find_by_plate"

	var (
		row Vehicle
		err error
	)
	if s.lockRows {
		row, err = s.queries.GetVehicleByPlateForUpdate(ctx, plate)
	} else {
		row, err = s.queries.GetVehicleByPlate(ctx, plate)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Errorf(domain.ENOTFOUND, op, "vehicle with plate %q not found", plate)
		}
		return nil, domain.Internal(err, op, "failed to get vehicle")
	}
	return rowToVehicle(row)
}

func (s *vehicleStore) Save(ctx context.Context, v *domain.VehicleFleetRecord) error {
	const op = "vehicle.save"

	kind, err := vehicleKindColumn(v.Kind)
	if err != nil {
		return err
	}

	row, err := s.queries.UpdateVehicle(ctx, UpdateVehicleParams{
		ID:                 v.ID,
		Kind:               kind,
		OwnerName:          v.OwnerName,
		Model:              v.Model,
		MileageKm:          v.MileageKM,
		FuelEfficiency:     v.FuelEfficiency,
		FleetStatus:        string(v.FleetStatus),
		EverInspected:      v.EverInspected,
		LatestInspectionID: domain.ToNullUUID(v.LatestInspectionID),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(op, "vehicle", v.ID.String())
		}
		return translateError(err, op, "failed to save vehicle")
	}
	v.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *vehicleStore) Provision(ctx context.Context, v *domain.VehicleFleetRecord) (*domain.VehicleFleetRecord, bool, error) {
	const op = "vehicle.provision"

	kind, err := vehicleKindColumn(v.Kind)
	if err != nil {
		return nil, false, err
	}

	n, err := s.queries.InsertVehicleIfAbsent(ctx, InsertVehicleIfAbsentParams{
		ID:                 v.ID,
		Kind:               kind,
		PlateNumber:        v.PlateNumber,
		OwnerName:          v.OwnerName,
		Model:              v.Model,
		MileageKm:          v.MileageKM,
		FuelEfficiency:     v.FuelEfficiency,
		FleetStatus:        string(v.FleetStatus),
		EverInspected:      v.EverInspected,
		LatestInspectionID: domain.ToNullUUID(v.LatestInspectionID),
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	})
	if err != nil {
		return nil, false, translateError(err, op, "failed to provision vehicle")
	}

	stored, err := s.FindByPlate(ctx, v.PlateNumber)
	if err != nil {
		return nil, false, err
	}
	return stored, n > 0, nil
}

// =============================================================================
// Conversion helpers
// =============================================================================

// vehicleKindColumn maps a vehicle kind onto its persisted value.
func vehicleKindColumn(kind domain.VehicleKind) (string, error) {
	switch kind {
	case domain.VehicleKindCar:
		return "car", nil
	case domain.VehicleKindOrganizationCar:
		return "organization_car", nil
	default:
		return "", domain.Mapping("vehicle.kind", "vehicle kind", string(kind))
	}
}

func rowToVehicle(row Vehicle) (*domain.VehicleFleetRecord, error) {
	var kind domain.VehicleKind
	switch row.Kind {
	case "car":
		kind = domain.VehicleKindCar
	case "organization_car":
		kind = domain.VehicleKindOrganizationCar
	default:
		return nil, domain.Mapping("vehicle.kind", "vehicle kind", row.Kind)
	}

	return &domain.VehicleFleetRecord{
		ID:                 row.ID,
		Kind:               kind,
		PlateNumber:        row.PlateNumber,
		OwnerName:          row.OwnerName,
		Model:              row.Model,
		MileageKM:          row.MileageKm,
		FuelEfficiency:     row.FuelEfficiency,
		LatestInspectionID: domain.NullUUIDToPtr(row.LatestInspectionID),
		EverInspected:      row.EverInspected,
		FleetStatus:        domain.FleetStatus(row.FleetStatus),
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}, nil
}

func inspectionToParams(rec *domain.InspectionRecord) (UpsertInspectionParams, error) {
	mechanical, err := toJSONB(rec.Mechanical, true)
	if err != nil {
		return UpsertInspectionParams{}, fmt.Errorf("mechanical: %w", err)
	}
	body, err := toJSONB(rec.Body, rec.Body != nil)
	if err != nil {
		return UpsertInspectionParams{}, fmt.Errorf("body: %w", err)
	}
	interior, err := toJSONB(rec.Interior, rec.Interior != nil)
	if err != nil {
		return UpsertInspectionParams{}, fmt.Errorf("interior: %w", err)
	}

	return UpsertInspectionParams{
		ID:            rec.ID,
		VehicleID:     rec.VehicleID,
		PlateNumber:   rec.PlateNumber,
		InspectorName: rec.InspectorName,
		Mechanical:    mechanical,
		Body:          body,
		Interior:      interior,
		BodyScore:     int32(rec.BodyScore),
		InteriorScore: int32(rec.InteriorScore),
		Status:        string(rec.Status),
		Readiness:     string(rec.Readiness),
		Notes:         domain.ToNullString(rec.Notes),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}, nil
}

func rowToInspection(row Inspection) (*domain.InspectionRecord, error) {
	status, err := domain.ParseInspectionStatus(row.Status)
	if err != nil {
		return nil, err
	}
	readiness, err := domain.ParseFleetReadiness(row.Readiness)
	if err != nil {
		return nil, err
	}

	rec := &domain.InspectionRecord{
		ID:            row.ID,
		VehicleID:     row.VehicleID,
		PlateNumber:   row.PlateNumber,
		InspectorName: row.InspectorName,
		BodyScore:     int(row.BodyScore),
		InteriorScore: int(row.InteriorScore),
		Status:        status,
		Readiness:     readiness,
		Notes:         domain.NullStringValue(row.Notes),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}

	if err := fromJSONB(row.Mechanical, &rec.Mechanical); err != nil {
		return nil, domain.Internal(err, "inspection.decode", "failed to decode mechanical readout")
	}
	if err := fromJSONB(row.Body, &rec.Body); err != nil {
		return nil, domain.Internal(err, "inspection.decode", "failed to decode body group")
	}
	if err := fromJSONB(row.Interior, &rec.Interior); err != nil {
		return nil, domain.Internal(err, "inspection.decode", "failed to decode interior group")
	}

	return rec, nil
}

func rowsToInspections(rows []Inspection) ([]domain.InspectionRecord, error) {
	records := make([]domain.InspectionRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := rowToInspection(row)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func toJSONB(v any, valid bool) (pqtype.NullRawMessage, error) {
	if !valid {
		return pqtype.NullRawMessage{Valid: false}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

func fromJSONB(raw pqtype.NullRawMessage, dst any) error {
	if !raw.Valid || len(raw.RawMessage) == 0 {
		return nil
	}
	return json.Unmarshal(raw.RawMessage, dst)
}

// translateError maps constraint violations to domain conflicts and
// everything else to an internal error.
func translateError(err error, op, message string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.Conflict(op, fmt.Sprintf("%s: duplicate %s", message, pgErr.ConstraintName))
		case pgForeignKeyViolation:
			return domain.Conflict(op, fmt.Sprintf("%s: referenced record missing (%s)", message, pgErr.ConstraintName))
		}
	}
	return domain.Internal(err, op, message)
}
