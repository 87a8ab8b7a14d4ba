// Package domain contains core business types and interfaces.
//
// This file defines the vehicle inspection record and the condition groups
// an inspector fills in: mechanical indicators, body and interior items.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Inspection Status
// =============================================================================

// InspectionStatus is the disposition of an inspection. Values are the
// persisted upper-snake form; see wire.go for the external form.
type InspectionStatus string

const (
	// InspectionStatusPending is the default tentative status when the
	// inspector did not propose one.
	InspectionStatusPending InspectionStatus = "PENDING"

	// InspectionStatusApproved means the vehicle is fit for service.
	InspectionStatusApproved InspectionStatus = "APPROVED"

	// InspectionStatusConditionallyApproved means the vehicle may be used,
	// but the inspector recorded a reservation.
	InspectionStatusConditionallyApproved InspectionStatus = "CONDITIONALLY_APPROVED"

	// InspectionStatusRejected is set by the disposition engine whenever the
	// mechanical gate fails or a category score falls below PassingScore.
	InspectionStatusRejected InspectionStatus = "REJECTED"
)

// InspectionStatuses lists every status variant.
var InspectionStatuses = []InspectionStatus{
	InspectionStatusPending,
	InspectionStatusApproved,
	InspectionStatusConditionallyApproved,
	InspectionStatusRejected,
}

// String returns the string representation of the status.
func (s InspectionStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized value.
func (s InspectionStatus) IsValid() bool {
	switch s {
	case InspectionStatusPending, InspectionStatusApproved,
		InspectionStatusConditionallyApproved, InspectionStatusRejected:
		return true
	}
	return false
}

// =============================================================================
// Fleet Readiness
// =============================================================================

// FleetReadiness is the coarse signal consumed by assignment and routing.
type FleetReadiness string

const (
	FleetReadinessReady            FleetReadiness = "READY"
	FleetReadinessReadyWithWarning FleetReadiness = "READY_WITH_WARNING"
	FleetReadinessPending          FleetReadiness = "PENDING"
	FleetReadinessNotReady         FleetReadiness = "NOT_READY"
)

// FleetReadinessLevels lists every readiness variant.
var FleetReadinessLevels = []FleetReadiness{
	FleetReadinessReady,
	FleetReadinessReadyWithWarning,
	FleetReadinessPending,
	FleetReadinessNotReady,
}

func (r FleetReadiness) String() string {
	return string(r)
}

// IsValid returns true if the readiness is a recognized value.
func (r FleetReadiness) IsValid() bool {
	switch r {
	case FleetReadinessReady, FleetReadinessReadyWithWarning,
		FleetReadinessPending, FleetReadinessNotReady:
		return true
	}
	return false
}

// =============================================================================
// Severity
// =============================================================================

// Severity is the magnitude of a flagged condition item.
type Severity string

const (
	SeverityNone   Severity = "NONE"
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Severities lists every severity variant.
var Severities = []Severity{SeverityNone, SeverityLow, SeverityMedium, SeverityHigh}

func (s Severity) String() string {
	return string(s)
}

// IsValid returns true if the severity is a recognized value.
// The empty severity is not valid here; callers treat it as unspecified.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityNone, SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// =============================================================================
// Condition Groups
// =============================================================================

// ConditionItem is one line of a body or interior checklist.
// Severity only counts when HasProblem is true.
type ConditionItem struct {
	HasProblem bool     `json:"hasProblem"`
	Severity   Severity `json:"severity,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// MechanicalReadout holds the mechanical indicators. Only the first six
// participate in the safety gate; the gauges and mileage are recorded for
// the inspection history.
type MechanicalReadout struct {
	EngineCondition bool `json:"engineCondition"`
	EnginePower     bool `json:"enginePower"`
	Suspension      bool `json:"suspension"`
	Brakes          bool `json:"brakes"`
	Steering        bool `json:"steering"`
	Gearbox         bool `json:"gearbox"`

	Mileage          bool `json:"mileage"`
	FuelGauge        bool `json:"fuelGauge"`
	TemperatureGauge bool `json:"temperatureGauge"`
	OilGauge         bool `json:"oilGauge"`
}

// BodyItem names an item of the body checklist.
type BodyItem string

const (
	BodyCollision BodyItem = "collision"
	BodyScratches BodyItem = "scratches"
	BodyPaint     BodyItem = "paint"
	BodyBreakages BodyItem = "breakages"
	BodyCracks    BodyItem = "cracks"
)

// BodyItems is the fixed body checklist.
var BodyItems = []BodyItem{BodyCollision, BodyScratches, BodyPaint, BodyBreakages, BodyCracks}

// IsValid returns true if the item is part of the body checklist.
func (b BodyItem) IsValid() bool {
	for _, item := range BodyItems {
		if item == b {
			return true
		}
	}
	return false
}

// InteriorItem names an item of the interior checklist.
type InteriorItem string

const (
	InteriorSeats            InteriorItem = "seats"
	InteriorSeatBelts        InteriorItem = "seatBelts"
	InteriorDashboard        InteriorItem = "dashboard"
	InteriorSteeringWheel    InteriorItem = "steeringWheel"
	InteriorHorn             InteriorItem = "horn"
	InteriorHeadlights       InteriorItem = "headlights"
	InteriorTailLights       InteriorItem = "tailLights"
	InteriorIndicators       InteriorItem = "indicators"
	InteriorBrakeLights      InteriorItem = "brakeLights"
	InteriorWipers           InteriorItem = "wipers"
	InteriorWindshield       InteriorItem = "windshield"
	InteriorMirrors          InteriorItem = "mirrors"
	InteriorAirConditioning  InteriorItem = "airConditioning"
	InteriorHeater           InteriorItem = "heater"
	InteriorRadio            InteriorItem = "radio"
	InteriorWindows          InteriorItem = "windows"
	InteriorDoorLocks        InteriorItem = "doorLocks"
	InteriorCarpets          InteriorItem = "carpets"
	InteriorRoofLining       InteriorItem = "roofLining"
	InteriorSpareTire        InteriorItem = "spareTire"
	InteriorJack             InteriorItem = "jack"
	InteriorFirstAidKit      InteriorItem = "firstAidKit"
	InteriorFireExtinguisher InteriorItem = "fireExtinguisher"
	InteriorWarningTriangle  InteriorItem = "warningTriangle"
	InteriorToolKit          InteriorItem = "toolKit"
)

// InteriorItems is the fixed interior checklist.
var InteriorItems = []InteriorItem{
	InteriorSeats, InteriorSeatBelts, InteriorDashboard, InteriorSteeringWheel,
	InteriorHorn, InteriorHeadlights, InteriorTailLights, InteriorIndicators,
	InteriorBrakeLights, InteriorWipers, InteriorWindshield, InteriorMirrors,
	InteriorAirConditioning, InteriorHeater, InteriorRadio, InteriorWindows,
	InteriorDoorLocks, InteriorCarpets, InteriorRoofLining, InteriorSpareTire,
	InteriorJack, InteriorFirstAidKit, InteriorFireExtinguisher,
	InteriorWarningTriangle, InteriorToolKit,
}

// IsValid returns true if the item is part of the interior checklist.
func (i InteriorItem) IsValid() bool {
	for _, item := range InteriorItems {
		if item == i {
			return true
		}
	}
	return false
}

// BodyConditionGroup maps body items to their condition. Items absent from
// the map were not flagged.
type BodyConditionGroup map[BodyItem]ConditionItem

// InteriorConditionGroup maps interior items to their condition.
type InteriorConditionGroup map[InteriorItem]ConditionItem

// =============================================================================
// Inspection Record
// =============================================================================

// InspectionRecord is a committed vehicle inspection with its computed
// disposition. The vehicle points at its latest inspection by id; the
// record only carries the vehicle id and plate, never the vehicle itself.
type InspectionRecord struct {
	ID            uuid.UUID
	VehicleID     uuid.UUID
	PlateNumber   string
	InspectorName string

	Mechanical MechanicalReadout
	Body       BodyConditionGroup
	Interior   InteriorConditionGroup

	BodyScore     int
	InteriorScore int
	Status        InspectionStatus
	Readiness     FleetReadiness
	Notes         string // Inspector notes followed by appended rejection reasons

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// Inspection Service Parameters
// =============================================================================

// InspectionInput is a submission for create or update. Status is the
// tentative status proposed by the inspector; empty means Pending.
type InspectionInput struct {
	PlateNumber   string
	InspectorName string
	Mechanical    *MechanicalReadout // nil fails the safety gate
	Body          BodyConditionGroup
	Interior      InteriorConditionGroup
	Status        InspectionStatus
	Notes         string
}
