package handler

import (
	"time"

	"github.com/DukeRupert/fleet/internal/domain"
)

// =============================================================================
// Request / Response Types
// =============================================================================

// Enum values cross the API in capitalized-word form ("ConditionallyApproved")
// and are converted to the persisted form at this boundary.

// conditionItemJSON is a condition item as it appears on the wire.
type conditionItemJSON struct {
	HasProblem bool   `json:"hasProblem"`
	Severity   string `json:"severity,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// inspectionRequest is the body of a create or update request.
type inspectionRequest struct {
	PlateNumber   string                       `json:"plateNumber"`
	InspectorName string                       `json:"inspectorName"`
	Mechanical    *domain.MechanicalReadout    `json:"mechanical"`
	Body          map[string]conditionItemJSON `json:"body"`
	Interior      map[string]conditionItemJSON `json:"interior"`
	Status        string                       `json:"status"`
	Notes         string                       `json:"notes"`
}

// inspectionResponse is an inspection record as returned by the API.
type inspectionResponse struct {
	ID            string                       `json:"id"`
	VehicleID     string                       `json:"vehicleId"`
	PlateNumber   string                       `json:"plateNumber"`
	InspectorName string                       `json:"inspectorName"`
	Mechanical    domain.MechanicalReadout     `json:"mechanical"`
	Body          map[string]conditionItemJSON `json:"body"`
	Interior      map[string]conditionItemJSON `json:"interior"`
	BodyScore     int                          `json:"bodyScore"`
	InteriorScore int                          `json:"interiorScore"`
	Status        string                       `json:"status"`
	Readiness     string                       `json:"readiness"`
	Notes         string                       `json:"notes"`
	CreatedAt     time.Time                    `json:"createdAt"`
	UpdatedAt     time.Time                    `json:"updatedAt"`
}

// vehicleResponse is a vehicle fleet record as returned by the API.
type vehicleResponse struct {
	ID                 string    `json:"id"`
	Kind               string    `json:"kind"`
	PlateNumber        string    `json:"plateNumber"`
	OwnerLabel         string    `json:"ownerLabel"`
	OwnerName          string    `json:"ownerName"`
	Model              string    `json:"model"`
	MileageKM          float64   `json:"mileageKm"`
	FuelEfficiency     float64   `json:"fuelEfficiency"`
	LatestInspectionID *string   `json:"latestInspectionId"`
	EverInspected      bool      `json:"everInspected"`
	FleetStatus        string    `json:"fleetStatus"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// =============================================================================
// Conversions
// =============================================================================

// toInput converts a request body to service input.
func (req inspectionRequest) toInput() (domain.InspectionInput, error) {
	input := domain.InspectionInput{
		PlateNumber:   req.PlateNumber,
		InspectorName: req.InspectorName,
		Mechanical:    req.Mechanical,
		Notes:         req.Notes,
	}

	if req.Status != "" {
		status, err := domain.InspectionStatusFromWire(req.Status)
		if err != nil {
			return input, err
		}
		input.Status = status
	}

	if req.Body != nil {
		input.Body = make(domain.BodyConditionGroup, len(req.Body))
		for key, item := range req.Body {
			cond, err := item.toDomain()
			if err != nil {
				return input, err
			}
			input.Body[domain.BodyItem(key)] = cond
		}
	}

	if req.Interior != nil {
		input.Interior = make(domain.InteriorConditionGroup, len(req.Interior))
		for key, item := range req.Interior {
			cond, err := item.toDomain()
			if err != nil {
				return input, err
			}
			input.Interior[domain.InteriorItem(key)] = cond
		}
	}

	return input, nil
}

func (c conditionItemJSON) toDomain() (domain.ConditionItem, error) {
	item := domain.ConditionItem{HasProblem: c.HasProblem, Notes: c.Notes}
	if c.Severity != "" {
		severity, err := domain.SeverityFromWire(c.Severity)
		if err != nil {
			return item, err
		}
		item.Severity = severity
	}
	return item, nil
}

func conditionItemToJSON(item domain.ConditionItem) (conditionItemJSON, error) {
	out := conditionItemJSON{HasProblem: item.HasProblem, Notes: item.Notes}
	if item.Severity != "" {
		severity, err := item.Severity.WireForm()
		if err != nil {
			return out, err
		}
		out.Severity = severity
	}
	return out, nil
}

func conditionGroupToJSON[K ~string](group map[K]domain.ConditionItem) (map[string]conditionItemJSON, error) {
	out := make(map[string]conditionItemJSON, len(group))
	for key, item := range group {
		converted, err := conditionItemToJSON(item)
		if err != nil {
			return nil, err
		}
		out[string(key)] = converted
	}
	return out, nil
}

// newInspectionResponse converts a record to its API form.
func newInspectionResponse(rec *domain.InspectionRecord) (inspectionResponse, error) {
	status, err := rec.Status.WireForm()
	if err != nil {
		return inspectionResponse{}, err
	}
	readiness, err := rec.Readiness.WireForm()
	if err != nil {
		return inspectionResponse{}, err
	}
	body, err := conditionGroupToJSON(rec.Body)
	if err != nil {
		return inspectionResponse{}, err
	}
	interior, err := conditionGroupToJSON(rec.Interior)
	if err != nil {
		return inspectionResponse{}, err
	}

	return inspectionResponse{
		ID:            rec.ID.String(),
		VehicleID:     rec.VehicleID.String(),
		PlateNumber:   rec.PlateNumber,
		InspectorName: rec.InspectorName,
		Mechanical:    rec.Mechanical,
		Body:          body,
		Interior:      interior,
		BodyScore:     rec.BodyScore,
		InteriorScore: rec.InteriorScore,
		Status:        status,
		Readiness:     readiness,
		Notes:         rec.Notes,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}, nil
}

func newInspectionListResponse(records []domain.InspectionRecord) ([]inspectionResponse, error) {
	out := make([]inspectionResponse, 0, len(records))
	for i := range records {
		resp, err := newInspectionResponse(&records[i])
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

func newVehicleResponse(v *domain.VehicleFleetRecord) vehicleResponse {
	resp := vehicleResponse{
		ID:             v.ID.String(),
		Kind:           string(v.Kind),
		PlateNumber:    v.PlateNumber,
		OwnerLabel:     v.Kind.OwnerLabel(),
		OwnerName:      v.OwnerName,
		Model:          v.Model,
		MileageKM:      v.MileageKM,
		FuelEfficiency: v.FuelEfficiency,
		EverInspected:  v.EverInspected,
		FleetStatus:    string(v.FleetStatus),
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
	if v.HasLatestInspection() {
		id := v.LatestInspectionID.String()
		resp.LatestInspectionID = &id
	}
	return resp
}
