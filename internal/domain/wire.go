// Package domain contains core business types and interfaces.
//
// This file converts enum values between the persisted upper-snake form
// (CONDITIONALLY_APPROVED) and the capitalized-word form used on the wire
// (ConditionallyApproved). An unknown value is always an error.
package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToWireForm converts an upper-snake value to its capitalized-word form.
func ToWireForm(persisted string) (string, error) {
	if persisted == "" {
		return "", fmt.Errorf("empty enum value")
	}

	// A Caser is stateful, so each call gets its own.
	caser := cases.Title(language.Und)

	var b strings.Builder
	for _, word := range strings.Split(persisted, "_") {
		if word == "" || !isASCIIUpper(word) {
			return "", fmt.Errorf("enum value %q is not upper-snake case", persisted)
		}
		b.WriteString(caser.String(strings.ToLower(word)))
	}
	return b.String(), nil
}

// FromWireForm converts a capitalized-word value to its upper-snake form.
func FromWireForm(wire string) (string, error) {
	if wire == "" {
		return "", fmt.Errorf("empty enum value")
	}
	if wire[0] < 'A' || wire[0] > 'Z' {
		return "", fmt.Errorf("enum value %q must start with an upper-case letter", wire)
	}

	var b strings.Builder
	for i := 0; i < len(wire); i++ {
		c := wire[i]
		switch {
		case c >= 'A' && c <= 'Z':
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c)
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		default:
			return "", fmt.Errorf("enum value %q contains %q", wire, c)
		}
	}
	return b.String(), nil
}

func isASCIIUpper(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// enum is satisfied by the string enums in this package.
type enum interface {
	~string
	IsValid() bool
}

func toWire[E enum](op, name string, value E) (string, error) {
	if !value.IsValid() {
		return "", Mapping(op, name, string(value))
	}
	wire, err := ToWireForm(string(value))
	if err != nil {
		return "", Mapping(op, name, string(value))
	}
	return wire, nil
}

func fromWire[E enum](op, name, wire string) (E, error) {
	var zero E
	persisted, err := FromWireForm(wire)
	if err != nil {
		return zero, Mapping(op, name, wire)
	}
	value := E(persisted)
	if !value.IsValid() {
		return zero, Mapping(op, name, wire)
	}
	return value, nil
}

func parsePersisted[E enum](op, name, persisted string) (E, error) {
	value := E(persisted)
	if !value.IsValid() {
		var zero E
		return zero, Mapping(op, name, persisted)
	}
	return value, nil
}

// =============================================================================
// Typed conversions
// =============================================================================

// WireForm returns the external form of the status.
func (s InspectionStatus) WireForm() (string, error) {
	return toWire("inspection_status.to_wire", "inspection status", s)
}

// InspectionStatusFromWire parses the external form of a status.
func InspectionStatusFromWire(wire string) (InspectionStatus, error) {
	return fromWire[InspectionStatus]("inspection_status.from_wire", "inspection status", wire)
}

// ParseInspectionStatus parses the persisted form of a status.
func ParseInspectionStatus(persisted string) (InspectionStatus, error) {
	return parsePersisted[InspectionStatus]("inspection_status.parse", "inspection status", persisted)
}

// WireForm returns the external form of the readiness.
func (r FleetReadiness) WireForm() (string, error) {
	return toWire("fleet_readiness.to_wire", "fleet readiness", r)
}

// FleetReadinessFromWire parses the external form of a readiness.
func FleetReadinessFromWire(wire string) (FleetReadiness, error) {
	return fromWire[FleetReadiness]("fleet_readiness.from_wire", "fleet readiness", wire)
}

// ParseFleetReadiness parses the persisted form of a readiness.
func ParseFleetReadiness(persisted string) (FleetReadiness, error) {
	return parsePersisted[FleetReadiness]("fleet_readiness.parse", "fleet readiness", persisted)
}

// WireForm returns the external form of the severity.
func (s Severity) WireForm() (string, error) {
	return toWire("severity.to_wire", "severity", s)
}

// SeverityFromWire parses the external form of a severity.
func SeverityFromWire(wire string) (Severity, error) {
	return fromWire[Severity]("severity.from_wire", "severity", wire)
}
