// Package service contains the business logic layer.
//
// This file implements the inspection service: it resolves the disposition
// of a submission, persists the inspection and keeps the vehicle's fleet
// record pointing at its latest inspection, all in one transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/DukeRupert/fleet/internal/auth"
	"github.com/DukeRupert/fleet/internal/domain"
	"github.com/DukeRupert/fleet/internal/metrics"
	"github.com/google/uuid"
)

// maxPlateLength bounds a normalized plate number.
const maxPlateLength = 20

// =============================================================================
// Interface Definition
// =============================================================================

// InspectionService defines the interface for inspection-related operations.
type InspectionService interface {
	// Create resolves the disposition of a submission and persists it.
	// A plate with no vehicle gets a placeholder vehicle first.
	// Returns a *domain.ValidationError (code EINVALID) keyed by field for a
	// blank or overlong plate and for unknown detail items.
	// Returns domain.EMAPPING for an unknown status or severity.
	// Returns domain.EINTERNAL with op "vehicle.provision" if the placeholder
	// vehicle cannot be created.
	Create(ctx context.Context, input domain.InspectionInput) (*domain.InspectionRecord, error)

	// Update replaces every field of an existing inspection by running the
	// same pipeline as Create.
	// Returns domain.ENOTFOUND if the inspection does not exist.
	Update(ctx context.Context, id uuid.UUID, input domain.InspectionInput) (*domain.InspectionRecord, error)

	// GetByID retrieves an inspection.
	// Returns domain.ENOTFOUND if the inspection does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.InspectionRecord, error)

	// ListByPlate returns the plate's inspections, newest first. An unknown
	// plate yields an empty list.
	ListByPlate(ctx context.Context, plate string) ([]domain.InspectionRecord, error)

	// List returns every inspection, newest first.
	List(ctx context.Context) ([]domain.InspectionRecord, error)

	// Delete removes an inspection. If it was the vehicle's latest
	// inspection the pointer is cleared; the fleet status is kept.
	// Returns domain.ENOTFOUND if the inspection does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// =============================================================================
// Implementation
// =============================================================================

// inspectionService implements the InspectionService interface.
type inspectionService struct {
	store  domain.Transactor
	logger *slog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

// NewInspectionService creates a new InspectionService.
//
// Parameters:
// - store: Transactional access to the inspection and vehicle stores
// - logger: Structured logger for operation logging
//
// Example usage:
//
//	inspectionService := service.NewInspectionService(repository.NewStore(db), logger)
func NewInspectionService(store domain.Transactor, logger *slog.Logger) InspectionService {
	return &inspectionService{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.New,
	}
}

// =============================================================================
// Create
// =============================================================================

// Create runs the disposition pipeline for a new submission.
func (s *inspectionService) Create(ctx context.Context, input domain.InspectionInput) (*domain.InspectionRecord, error) {
	const op = "inspection.create"

	input, err := s.prepareInput(ctx, input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec, d := buildRecord(s.newID(), input, now, now)

	var (
		provisioned bool
		synced      int
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context, st domain.Stores) error {
		vehicle, inserted, err := lockOrProvisionVehicle(ctx, st.Vehicles, rec.PlateNumber, now)
		if err != nil {
			return err
		}
		provisioned = inserted
		rec.VehicleID = vehicle.ID

		if err := st.Inspections.Save(ctx, rec); err != nil {
			return err
		}
		synced, err = syncVehicle(ctx, st.Vehicles, vehicle, rec)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, op, err, "failed to create inspection", rec)
	}

	if provisioned {
		metrics.VehiclesProvisioned.Inc()
		s.logger.Info("vehicle auto-provisioned",
			"plate_number", rec.PlateNumber,
			"vehicle_id", rec.VehicleID,
		)
	}
	s.committed(ctx, metrics.OperationCreate, rec, d, synced)

	return rec, nil
}

// =============================================================================
// Update
// =============================================================================

// Update runs the disposition pipeline and replaces the stored record.
func (s *inspectionService) Update(ctx context.Context, id uuid.UUID, input domain.InspectionInput) (*domain.InspectionRecord, error) {
	const op = "inspection.update"

	input, err := s.prepareInput(ctx, input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var (
		rec         *domain.InspectionRecord
		d           domain.Disposition
		provisioned bool
		synced      int
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context, st domain.Stores) error {
		// Locks the inspection before its vehicles, the same order Delete
		// takes them in.
		existing, err := st.Inspections.FindByID(ctx, id)
		if err != nil {
			return err
		}

		rec, d = buildRecord(id, input, existing.CreatedAt, now)

		vehicles, inserted, err := lockVehiclesForUpdate(ctx, st.Vehicles, existing.PlateNumber, rec.PlateNumber, now)
		if err != nil {
			return err
		}
		provisioned = inserted

		vehicle := vehicles[rec.PlateNumber]
		rec.VehicleID = vehicle.ID

		if err := st.Inspections.Update(ctx, rec); err != nil {
			return err
		}

		// Moving an inspection to another plate leaves the old vehicle
		// without it.
		if previous, ok := vehicles[existing.PlateNumber]; ok && previous != vehicle {
			if previous.DetachInspection(id) {
				if err := st.Vehicles.Save(ctx, previous); err != nil {
					return err
				}
			}
		}

		synced, err = syncVehicle(ctx, st.Vehicles, vehicle, rec)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, op, err, "failed to update inspection", rec)
	}

	if provisioned {
		metrics.VehiclesProvisioned.Inc()
		s.logger.Info("vehicle auto-provisioned",
			"plate_number", rec.PlateNumber,
			"vehicle_id", rec.VehicleID,
		)
	}
	s.committed(ctx, metrics.OperationUpdate, rec, d, synced)

	return rec, nil
}

// =============================================================================
// Queries
// =============================================================================

// GetByID retrieves an inspection by ID.
func (s *inspectionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InspectionRecord, error) {
	const op = "inspection.get"

	rec, err := s.store.Stores().Inspections.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreError(op, err, "failed to get inspection")
	}
	return rec, nil
}

// ListByPlate lists the inspections of one plate.
func (s *inspectionService) ListByPlate(ctx context.Context, plate string) ([]domain.InspectionRecord, error) {
	const op = "inspection.list_by_plate"

	plate = domain.NormalizePlate(plate)
	if plate == "" {
		return nil, domain.Invalid(op, "plate number is required")
	}

	records, err := s.store.Stores().Inspections.FindByPlate(ctx, plate)
	if err != nil {
		return nil, wrapStoreError(op, err, "failed to list inspections")
	}
	return records, nil
}

// List lists every inspection.
func (s *inspectionService) List(ctx context.Context) ([]domain.InspectionRecord, error) {
	const op = "inspection.list"

	records, err := s.store.Stores().Inspections.FindAll(ctx)
	if err != nil {
		return nil, wrapStoreError(op, err, "failed to list inspections")
	}
	return records, nil
}

// =============================================================================
// Delete
// =============================================================================

// Delete removes an inspection and detaches it from its vehicle.
func (s *inspectionService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "inspection.delete"

	var (
		plate    string
		detached bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, st domain.Stores) error {
		existing, err := st.Inspections.FindByID(ctx, id)
		if err != nil {
			return err
		}
		plate = existing.PlateNumber

		// Lock the vehicle before the delete so a concurrent submission
		// cannot re-point it in between.
		vehicle, err := st.Vehicles.FindByPlate(ctx, plate)
		if err != nil && domain.ErrorCode(err) != domain.ENOTFOUND {
			return err
		}

		if err := st.Inspections.DeleteByID(ctx, id); err != nil {
			return err
		}

		if vehicle != nil && vehicle.DetachInspection(id) {
			detached = true
			return st.Vehicles.Save(ctx, vehicle)
		}
		return nil
	})
	if err != nil {
		return s.fail(ctx, op, err, "failed to delete inspection", nil)
	}

	metrics.InspectionsDeleted.Inc()
	s.logger.Info("inspection deleted",
		"inspection_id", id,
		"plate_number", plate,
		"vehicle_detached", detached,
		"caller", auth.GetCaller(ctx).Name,
	)

	return nil
}

// =============================================================================
// Pipeline helpers
// =============================================================================

// prepareInput validates a submission and fills in defaults. Field problems
// are collected into one ValidationError; enum values that cannot be mapped
// are reported after them as EMAPPING.
func (s *inspectionService) prepareInput(ctx context.Context, input domain.InspectionInput) (domain.InspectionInput, error) {
	const op = "inspection.validate"

	var verr *domain.ValidationError
	fieldError := func(field, message string) {
		if verr == nil {
			verr = domain.NewValidationError(op, field, message)
			return
		}
		domain.AddFieldError(verr, field, message)
	}

	input.PlateNumber = domain.NormalizePlate(input.PlateNumber)
	switch {
	case input.PlateNumber == "":
		fieldError("plateNumber", "Plate number is required")
	case len(input.PlateNumber) > maxPlateLength:
		fieldError("plateNumber", fmt.Sprintf("Plate number must be %d characters or less", maxPlateLength))
	}
	for item := range input.Body {
		if !item.IsValid() {
			fieldError("body."+string(item), "Unknown body item")
		}
	}
	for item := range input.Interior {
		if !item.IsValid() {
			fieldError("interior."+string(item), "Unknown interior item")
		}
	}
	if verr != nil {
		return input, verr
	}

	input.InspectorName = strings.TrimSpace(input.InspectorName)
	if input.InspectorName == "" && auth.HasCaller(ctx) {
		input.InspectorName = auth.GetCaller(ctx).Name
	}

	if input.Status == "" {
		input.Status = domain.InspectionStatusPending
	}
	if !input.Status.IsValid() {
		return input, domain.Mapping(op, "inspection status", string(input.Status))
	}

	for item, cond := range input.Body {
		if err := validateSeverity(op, string(item), cond); err != nil {
			return input, err
		}
	}
	for item, cond := range input.Interior {
		if err := validateSeverity(op, string(item), cond); err != nil {
			return input, err
		}
	}

	return input, nil
}

// validateSeverity accepts an empty severity, which scores as Low.
func validateSeverity(op, item string, cond domain.ConditionItem) error {
	if cond.Severity == "" || cond.Severity.IsValid() {
		return nil
	}
	return domain.Mapping(op, "severity", fmt.Sprintf("%s=%s", item, cond.Severity))
}

// buildRecord resolves the disposition and assembles the record to persist.
func buildRecord(id uuid.UUID, input domain.InspectionInput, createdAt, updatedAt time.Time) (*domain.InspectionRecord, domain.Disposition) {
	d := domain.Resolve(input.Mechanical, input.Body, input.Interior, input.Status, input.Notes)

	rec := &domain.InspectionRecord{
		ID:            id,
		PlateNumber:   input.PlateNumber,
		InspectorName: input.InspectorName,
		Body:          input.Body,
		Interior:      input.Interior,
		BodyScore:     d.BodyScore,
		InteriorScore: d.InteriorScore,
		Status:        d.Status,
		Readiness:     d.Readiness,
		Notes:         d.Notes,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}
	if input.Mechanical != nil {
		rec.Mechanical = *input.Mechanical
	}
	return rec, d
}

// lockOrProvisionVehicle returns the plate's vehicle, locked for the rest of
// the transaction, creating a placeholder if the plate is unknown.
func lockOrProvisionVehicle(ctx context.Context, vehicles domain.VehicleStore, plate string, now time.Time) (*domain.VehicleFleetRecord, bool, error) {
	const op = "vehicle.provision"

	vehicle, err := vehicles.FindByPlate(ctx, plate)
	if err == nil {
		return vehicle, false, nil
	}
	if domain.ErrorCode(err) != domain.ENOTFOUND {
		return nil, false, err
	}

	vehicle, inserted, err := vehicles.Provision(ctx, domain.NewPlaceholderVehicle(plate, now))
	if err != nil {
		return nil, false, domain.Internal(err, op, fmt.Sprintf("failed to provision vehicle for plate %q", plate))
	}
	return vehicle, inserted, nil
}

// lockVehiclesForUpdate locks the vehicles of the old and new plates in
// lexical order, so two updates moving inspections between the same plates
// cannot deadlock. The new plate is provisioned if needed; a missing old
// vehicle is skipped.
func lockVehiclesForUpdate(ctx context.Context, vehicles domain.VehicleStore, oldPlate, newPlate string, now time.Time) (map[string]*domain.VehicleFleetRecord, bool, error) {
	plates := []string{newPlate}
	if oldPlate != newPlate {
		plates = append(plates, oldPlate)
		sort.Strings(plates)
	}

	locked := make(map[string]*domain.VehicleFleetRecord, len(plates))
	provisioned := false
	for _, plate := range plates {
		if plate == newPlate {
			vehicle, inserted, err := lockOrProvisionVehicle(ctx, vehicles, plate, now)
			if err != nil {
				return nil, false, err
			}
			locked[plate] = vehicle
			provisioned = inserted
			continue
		}

		vehicle, err := vehicles.FindByPlate(ctx, plate)
		if err != nil {
			if domain.ErrorCode(err) == domain.ENOTFOUND {
				continue
			}
			return nil, false, err
		}
		locked[plate] = vehicle
	}
	return locked, provisioned, nil
}

// syncVehicle points the vehicle at rec and saves it if anything changed.
// It returns the number of changed fields.
func syncVehicle(ctx context.Context, vehicles domain.VehicleStore, vehicle *domain.VehicleFleetRecord, rec *domain.InspectionRecord) (int, error) {
	changed := vehicle.SyncWithInspection(rec)
	if changed == 0 {
		return 0, nil
	}
	return changed, vehicles.Save(ctx, vehicle)
}

// committed logs and counts a committed create or update. Nothing here runs
// for a rolled back unit of work.
func (s *inspectionService) committed(ctx context.Context, operation string, rec *domain.InspectionRecord, d domain.Disposition, synced int) {
	scoreRejected := d.GatePassed && (d.BodyScore < domain.PassingScore || d.InteriorScore < domain.PassingScore)
	metrics.InspectionCommitted(operation, string(rec.Status), d.GatePassed, scoreRejected)
	metrics.VehicleSynced(synced)

	msg := "inspection created"
	if operation == metrics.OperationUpdate {
		msg = "inspection updated"
	}
	s.logger.Info(msg,
		"inspection_id", rec.ID,
		"plate_number", rec.PlateNumber,
		"status", rec.Status,
		"readiness", rec.Readiness,
		"body_score", rec.BodyScore,
		"interior_score", rec.InteriorScore,
		"gate_passed", d.GatePassed,
		"caller", auth.GetCaller(ctx).Name,
	)
}

// fail logs a failed unit of work and returns it as a domain error.
func (s *inspectionService) fail(ctx context.Context, op string, err error, message string, rec *domain.InspectionRecord) error {
	err = wrapStoreError(op, err, message)

	attrs := []any{"op", op, "code", domain.ErrorCode(err), "error", err, "caller", auth.GetCaller(ctx).Name}
	if rec != nil {
		attrs = append(attrs, "inspection_id", rec.ID, "plate_number", rec.PlateNumber)
	}
	if domain.ErrorCode(err) == domain.EINTERNAL {
		s.logger.Error("inspection operation failed", attrs...)
	} else {
		s.logger.Info("inspection operation rejected", attrs...)
	}
	return err
}

// wrapStoreError passes domain errors through and wraps anything else as an
// internal error.
func wrapStoreError(op string, err error, message string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Internal(err, op, message)
}
