package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - The window PTO entitlement is computed for
// =============================================================================

// Period is an inclusive range of calendar days.
type Period struct {
	Start Date
	End   Date
}

// Contains returns true if the day is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every day in the period.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Validate rejects periods whose end precedes their start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	return nil
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodType defines how periods are calculated.
type PeriodType string

const (
	PeriodTrimester    PeriodType = "trimester"     // Jan-Apr, May-Aug, Sep-Dec
	PeriodCalendarYear PeriodType = "calendar_year" // Jan 1 - Dec 31
)

// TrimesterMonths is the length of one trimester.
const TrimesterMonths = 4

// PeriodConfig defines how to calculate periods.
type PeriodConfig struct {
	Type PeriodType
}

// Trimesters is the period configuration used for PTO entitlement.
var Trimesters = PeriodConfig{Type: PeriodTrimester}

// =============================================================================
// PERIOD CALCULATOR
// =============================================================================

// PeriodFor returns the period that contains the given day.
func (pc PeriodConfig) PeriodFor(d Date) Period {
	switch pc.Type {
	case PeriodCalendarYear:
		return Period{Start: StartOfYear(d.Year()), End: EndOfYear(d.Year())}
	default:
		return TrimesterFor(d)
	}
}

// Next returns the period immediately after p.
func (pc PeriodConfig) Next(p Period) Period {
	return pc.PeriodFor(p.End.AddDays(1))
}

// Previous returns the period immediately before p. For trimesters starting on
// January 1 this is the September trimester of the prior year.
func (pc PeriodConfig) Previous(p Period) Period {
	return pc.PeriodFor(p.Start.AddDays(-1))
}

// TrimesterFor returns the year-aligned trimester containing d.
func TrimesterFor(d Date) Period {
	startMonth := time.Month((int(d.Month())-1)/TrimesterMonths*TrimesterMonths + 1)
	start := NewDate(d.Year(), startMonth, 1)
	return Period{Start: start, End: start.AddMonths(TrimesterMonths).AddDays(-1)}
}

// TrimesterIndex returns 1, 2 or 3 for the trimester containing d.
func TrimesterIndex(d Date) int {
	return (int(d.Month())-1)/TrimesterMonths + 1
}

// TrimesterLabel renders a trimester as "2024 T2".
func TrimesterLabel(p Period) string {
	return fmt.Sprintf("%d T%d", p.Start.Year(), TrimesterIndex(p.Start))
}
