// Package domain contains core business types and interfaces.
//
// This file implements the inspection disposition engine: the mechanical
// safety gate, category scoring, the disposition decision, and the mapping
// of a disposition onto the vehicle fleet record.
package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// Scoring Constants
// =============================================================================

const (
	// MaxCategoryScore is the score of a category with no flagged items.
	MaxCategoryScore = 100

	// PassingScore is the lowest body or interior score that does not
	// reject the inspection. Exactly 70 passes.
	PassingScore = 70

	DeductionHigh   = 20
	DeductionMedium = 10
	DeductionLow    = 5
)

// Markers appended to the inspection notes when the engine rejects.
const (
	NoteMechanicalFailure = "[REJECTED] Mechanical safety gate failed"
	NoteScoreFailure      = "[REJECTED] Body or interior score below 70"
)

// =============================================================================
// Mechanical Gate
// =============================================================================

// GatePassed reports whether every safety-critical indicator is OK.
// A nil readout fails the gate.
func (m *MechanicalReadout) GatePassed() bool {
	if m == nil {
		return false
	}
	return m.EngineCondition && m.EnginePower && m.Suspension &&
		m.Brakes && m.Steering && m.Gearbox
}

// FailedGateIndicators names the safety-critical indicators that are not OK.
func (m *MechanicalReadout) FailedGateIndicators() []string {
	if m == nil {
		return []string{"mechanical readout missing"}
	}
	checks := []struct {
		name string
		ok   bool
	}{
		{"engine condition", m.EngineCondition},
		{"engine power", m.EnginePower},
		{"suspension", m.Suspension},
		{"brakes", m.Brakes},
		{"steering", m.Steering},
		{"gearbox", m.Gearbox},
	}
	var failed []string
	for _, c := range checks {
		if !c.ok {
			failed = append(failed, c.name)
		}
	}
	return failed
}

// =============================================================================
// Category Scorer
// =============================================================================

// Deduction returns the points an item removes from its category score.
// A problem with no or unknown severity is scored as Low.
func Deduction(item ConditionItem) int {
	if !item.HasProblem {
		return 0
	}
	switch item.Severity {
	case SeverityHigh:
		return DeductionHigh
	case SeverityMedium:
		return DeductionMedium
	default:
		return DeductionLow
	}
}

// ScoreCategory reduces a condition group to a score in [0, 100].
func ScoreCategory[K comparable](group map[K]ConditionItem) int {
	score := MaxCategoryScore
	for _, item := range group {
		score -= Deduction(item)
	}
	if score < 0 {
		return 0
	}
	return score
}

// =============================================================================
// Disposition Resolver
// =============================================================================

// Disposition is the outcome of evaluating one inspection submission.
type Disposition struct {
	GatePassed    bool
	BodyScore     int
	InteriorScore int
	Status        InspectionStatus
	Readiness     FleetReadiness
	Notes         string
}

// Resolve applies the mechanical gate, scores the body and interior groups,
// and derives the final status and readiness.
//
// The resolver only ever demotes: when the gate and both thresholds pass,
// the tentative status is returned unchanged, whatever it is.
func Resolve(mechanical *MechanicalReadout, body BodyConditionGroup, interior InteriorConditionGroup, tentative InspectionStatus, notes string) Disposition {
	d := Disposition{
		GatePassed: mechanical.GatePassed(),
		Notes:      notes,
	}

	if !d.GatePassed {
		d.BodyScore = 0
		d.InteriorScore = 0
		d.Status = InspectionStatusRejected
		d.Notes = appendNote(notes, fmt.Sprintf("%s: %s",
			NoteMechanicalFailure, strings.Join(mechanical.FailedGateIndicators(), ", ")))
		d.Readiness = ReadinessFor(d.Status)
		return d
	}

	d.BodyScore = ScoreCategory(body)
	d.InteriorScore = ScoreCategory(interior)

	if d.BodyScore < PassingScore || d.InteriorScore < PassingScore {
		d.Status = InspectionStatusRejected
		d.Notes = appendNote(notes, fmt.Sprintf("%s (body %d, interior %d)",
			NoteScoreFailure, d.BodyScore, d.InteriorScore))
	} else {
		d.Status = tentative
	}

	d.Readiness = ReadinessFor(d.Status)
	return d
}

// ReadinessFor maps a final status onto the fleet readiness signal.
func ReadinessFor(status InspectionStatus) FleetReadiness {
	switch status {
	case InspectionStatusApproved:
		return FleetReadinessReady
	case InspectionStatusConditionallyApproved:
		return FleetReadinessReadyWithWarning
	default:
		return FleetReadinessPending
	}
}

// FleetStatusFor maps a final status onto the vehicle fleet status.
// Pending (or unset) leaves the current value in place.
func FleetStatusFor(status InspectionStatus, current FleetStatus) FleetStatus {
	switch status {
	case InspectionStatusApproved, InspectionStatusConditionallyApproved:
		return FleetStatusInspectedAndReady
	case InspectionStatusRejected:
		return FleetStatusInspectionRejected
	default:
		return current
	}
}

func appendNote(notes, note string) string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}

// =============================================================================
// Vehicle State Synchronization
// =============================================================================

// SyncWithInspection points the vehicle at a committed inspection and
// derives its fleet status. It returns the number of fields it changed, so
// a second call with the same record returns 0 and needs no save.
func (v *VehicleFleetRecord) SyncWithInspection(rec *InspectionRecord) int {
	changed := 0

	if !v.IsLatestInspection(rec.ID) {
		id := rec.ID
		v.LatestInspectionID = &id
		changed++
	}

	if !v.EverInspected {
		v.EverInspected = true
		changed++
	}

	if next := FleetStatusFor(rec.Status, v.FleetStatus); next != v.FleetStatus {
		v.FleetStatus = next
		changed++
	}

	return changed
}

// DetachInspection clears the latest-inspection pointer if it refers to id.
// The fleet status is left as is. Returns true if the pointer was cleared.
func (v *VehicleFleetRecord) DetachInspection(id uuid.UUID) bool {
	if !v.IsLatestInspection(id) {
		return false
	}
	v.LatestInspectionID = nil
	return true
}
