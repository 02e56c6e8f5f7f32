package timeoff

import (
	"fmt"
	"strings"

	"github.com/schedulehq/schedule-engine/generic"
)

// InsufficientPTOError is returned when a PTO request needs more hours than
// the trimester of its first day has left.
type InsufficientPTOError struct {
	EmployeeID EmployeeID
	Trimester  generic.Period
	Requested  int
	Available  int
	Remaining  int // may be negative; Available is clamped at zero
}

func (e *InsufficientPTOError) Error() string {
	return fmt.Sprintf("insufficient PTO: requested %d hours, %d available in %s",
		e.Requested, e.Available, generic.TrimesterLabel(e.Trimester))
}

func (e *InsufficientPTOError) Unwrap() error {
	return generic.ErrInsufficientBalance
}

// OverlapError lists the existing entries a new request collides with.
// Blocked is true when the rules forbid overriding.
type OverlapError struct {
	EmployeeID EmployeeID
	Range      generic.Period
	Conflicts  []Entry
	Blocked    bool
}

func (e *OverlapError) Error() string {
	dates := e.ConflictDates()
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.String()
	}
	verb := "conflicts with"
	if e.Blocked {
		verb = "blocked by"
	}
	return fmt.Sprintf("time off %s %s existing time off on %s",
		e.Range, verb, strings.Join(parts, ", "))
}

func (e *OverlapError) Unwrap() error {
	return generic.ErrOverlap
}

// ConflictDates returns the distinct conflicting days in order.
func (e *OverlapError) ConflictDates() []generic.Date {
	var dates []generic.Date
	seen := make(map[string]bool)
	for _, c := range e.Conflicts {
		if seen[c.Date.String()] {
			continue
		}
		seen[c.Date.String()] = true
		dates = append(dates, c.Date)
	}
	return dates
}
