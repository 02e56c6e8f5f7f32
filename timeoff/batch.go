package timeoff

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/schedulehq/schedule-engine/generic"
)

// VacationHoursPerDay is fixed regardless of the job code's daily hours.
const VacationHoursPerDay = 8

// MaxRequestDays caps how many rows one request may expand into.
const MaxRequestDays = 366

// Request is a manager's time-off action before it is expanded into rows.
type Request struct {
	EmployeeID  EmployeeID
	Type        Type
	Start       generic.Date
	Days        int
	HoursPerDay int // PTO and Requested; 0 means the default
	IsAllDay    bool
	StartTime   string // HH:MM, Requested partial-day only
	EndTime     string
	// Override writes the entries even though they overlap existing time
	// off. Ignored when the rules block overlaps.
	Override bool
}

// Range is the inclusive span of days the request covers.
func (r Request) Range() generic.Period {
	return generic.Period{Start: r.Start, End: r.Start.AddDays(r.Days - 1)}
}

func (r Request) Validate() error {
	if !r.Type.Valid() {
		return fmt.Errorf("%w: unknown time off type %q", generic.ErrInvalidRequest, r.Type)
	}
	if r.Start.IsZero() {
		return fmt.Errorf("%w: start date is required", generic.ErrInvalidRequest)
	}
	if r.Days < 1 || r.Days > MaxRequestDays {
		return fmt.Errorf("%w: days must be between 1 and %d", generic.ErrInvalidRequest, MaxRequestDays)
	}
	if r.HoursPerDay < 0 || r.HoursPerDay > 24 {
		return fmt.Errorf("%w: hours per day must be between 0 and 24", generic.ErrInvalidRequest)
	}
	if r.Type != TypeRequested {
		return nil
	}
	if r.Days != 1 {
		return fmt.Errorf("%w: requested time off covers a single day", generic.ErrInvalidRequest)
	}
	if r.IsAllDay {
		return nil
	}
	start, err := generic.ParseClock(r.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start time: %v", generic.ErrInvalidRequest, err)
	}
	end, err := generic.ParseClock(r.EndTime)
	if err != nil {
		return fmt.Errorf("%w: end time: %v", generic.ErrInvalidRequest, err)
	}
	if end <= start {
		return fmt.Errorf("%w: end time must be after start time", generic.ErrInvalidRequest)
	}
	return nil
}

// hoursPerDay resolves the hours each generated row carries.
func (r Request) hoursPerDay(rules Rules) int {
	switch r.Type {
	case TypeVacation:
		return VacationHoursPerDay
	case TypePTO:
		if r.HoursPerDay > 0 {
			return r.HoursPerDay
		}
		return rules.PTOHoursPerRequest
	default:
		if r.HoursPerDay > 0 {
			return r.HoursPerDay
		}
		if r.IsAllDay {
			return VacationHoursPerDay
		}
		// Validate has already checked the clock strings.
		start, _ := generic.ParseClock(r.StartTime)
		end, _ := generic.ParseClock(r.EndTime)
		// Partial hours round up: 09:00-09:30 books one hour.
		return (end - start + 59) / 60
	}
}

// grouped reports whether the request's rows share a vacation group id.
// Vacations always do; PTO only when it spans more than one day.
func (r Request) grouped() bool {
	return r.Type == TypeVacation || (r.Type == TypePTO && r.Days > 1)
}

// NewGroupID returns a fresh vacation group id.
func NewGroupID() string {
	return uuid.NewString()
}

// BuildBatch expands a request into one entry per consecutive day. groupID is
// used only when the request is grouped.
func BuildBatch(r Request, rules Rules, groupID string) []Entry {
	hours := r.hoursPerDay(rules)
	if !r.grouped() {
		groupID = ""
	}
	allDay := r.IsAllDay || r.Type != TypeRequested

	entries := make([]Entry, 0, r.Days)
	for i := 0; i < r.Days; i++ {
		e := Entry{
			EmployeeID:      r.EmployeeID,
			Date:            r.Start.AddDays(i),
			Type:            r.Type,
			Hours:           hours,
			VacationGroupID: groupID,
			IsAllDay:        allDay,
		}
		if !allDay {
			e.StartTime = r.StartTime
			e.EndTime = r.EndTime
		}
		entries = append(entries, e)
	}
	return entries
}

// VacationWeeks is how many vacation weeks a group of n days consumes.
func VacationWeeks(days int) int {
	if days <= 0 {
		return 0
	}
	return (days + 6) / 7
}
