// Package timeoff implements the time-off store rules and the trimester PTO
// accrual service.
package timeoff

import (
	"fmt"
	"strings"

	"github.com/schedulehq/schedule-engine/generic"
)

// =============================================================================
// TIME-OFF TYPE
// =============================================================================

// Type is the stored time-off kind.
type Type string

const (
	TypePTO      Type = "pto"
	TypeVacation Type = "vac"
	// TypeRequested is stored as "sick" for compatibility with existing
	// databases; managers see it as "Requested".
	TypeRequested Type = "sick"
)

// ParseType accepts the stored value or the display label.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pto":
		return TypePTO, nil
	case "vac", "vacation":
		return TypeVacation, nil
	case "sick", "requested":
		return TypeRequested, nil
	}
	return "", fmt.Errorf("%w: unknown time off type %q", generic.ErrInvalidRequest, s)
}

func (t Type) Valid() bool {
	return t == TypePTO || t == TypeVacation || t == TypeRequested
}

func (t Type) Label() string {
	switch t {
	case TypePTO:
		return "PTO"
	case TypeVacation:
		return "Vacation"
	case TypeRequested:
		return "Requested"
	}
	return string(t)
}

// =============================================================================
// RECORDS
// =============================================================================

type EmployeeID int64
type EntryID int64

// Employee is the subset of the employee record the time-off rules read.
// VacationWeeksUsed is only changed by vacation group creation and deletion.
type Employee struct {
	ID                   EmployeeID
	Name                 string
	JobCode              string
	VacationWeeksAllowed int
	VacationWeeksUsed    int
}

// Entry is one day of time off. Multi-day requests are stored as one Entry
// per day sharing a VacationGroupID.
type Entry struct {
	ID              EntryID
	EmployeeID      EmployeeID
	Date            generic.Date
	Type            Type
	Hours           int
	VacationGroupID string
	IsAllDay        bool
	StartTime       string // HH:MM, partial-day only
	EndTime         string // HH:MM, partial-day only
}

// Grouped reports whether deleting this entry must delete its whole group.
func (e Entry) Grouped() bool { return e.VacationGroupID != "" }

// HistoryRecord is a banked carryover for one employee and trimester.
type HistoryRecord struct {
	EmployeeID     EmployeeID
	TrimesterStart generic.Date
	CarryoverHours int
}

// =============================================================================
// RULES - The single-row PTO settings
// =============================================================================

type Rules struct {
	PTOHoursPerTrimester int
	PTOHoursPerRequest   int  // hours per all-day PTO day when none are given
	MaxCarryoverHours    int
	BlockOverlaps        bool // hard-block instead of warn on same-day conflicts
}

func DefaultRules() Rules {
	return Rules{
		PTOHoursPerTrimester: 40,
		PTOHoursPerRequest:   8,
		MaxCarryoverHours:    8,
		BlockOverlaps:        false,
	}
}

func (r Rules) Validate() error {
	if r.PTOHoursPerTrimester < 0 || r.PTOHoursPerRequest < 0 || r.MaxCarryoverHours < 0 {
		return fmt.Errorf("%w: PTO hours must not be negative", generic.ErrInvalidRequest)
	}
	return nil
}
