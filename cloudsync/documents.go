/*
Package cloudsync mirrors employees and time off to a document store.

PURPOSE:
  Managers back up the local database to a cloud document store and restore
  it on another device. The store is an external collaborator hidden behind
  Mirror; this package only defines the document shapes and the batching.

COLLECTIONS:
  employees        doc id "{employeeId}"
  timeOff          doc id "{employeeId}_{entryId}"
  shifts, publishedSchedules, timeOffRequests are named for the companion
  app but not written here.

GUARANTEES:
  None beyond last write wins. Uploads are batched; a failed batch is
  reported, not retried, and earlier batches stay written. The vacation
  group id, type, hours and date of every time-off entry round-trip
  unchanged.
*/
package cloudsync

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/timeoff"
)

const (
	CollectionEmployees          = "employees"
	CollectionTimeOff            = "timeOff"
	CollectionShifts             = "shifts"
	CollectionPublishedSchedules = "publishedSchedules"
	CollectionTimeOffRequests    = "timeOffRequests"
)

// =============================================================================
// DOCUMENT SHAPES
// =============================================================================

type EmployeeDoc struct {
	ID                   int64  `json:"id" cbor:"id"`
	Name                 string `json:"name" cbor:"name"`
	JobCode              string `json:"jobCode" cbor:"jobCode"`
	VacationWeeksAllowed int    `json:"vacationWeeksAllowed" cbor:"vacationWeeksAllowed"`
	VacationWeeksUsed    int    `json:"vacationWeeksUsed" cbor:"vacationWeeksUsed"`
}

type TimeOffDoc struct {
	ID              int64  `json:"id" cbor:"id"`
	EmployeeID      int64  `json:"employeeId" cbor:"employeeId"`
	Date            string `json:"date" cbor:"date"`
	TimeOffType     string `json:"timeOffType" cbor:"timeOffType"`
	Hours           int    `json:"hours" cbor:"hours"`
	VacationGroupID string `json:"vacationGroupId,omitempty" cbor:"vacationGroupId,omitempty"`
	IsAllDay        bool   `json:"isAllDay" cbor:"isAllDay"`
	StartTime       string `json:"startTime,omitempty" cbor:"startTime,omitempty"`
	EndTime         string `json:"endTime,omitempty" cbor:"endTime,omitempty"`
}

// Document is one write to, or read from, a collection. Exactly one of the
// payload fields is set, matching Collection.
type Document struct {
	Collection string       `json:"collection" cbor:"collection"`
	ID         string       `json:"id" cbor:"id"`
	Employee   *EmployeeDoc `json:"employee,omitempty" cbor:"employee,omitempty"`
	TimeOff    *TimeOffDoc  `json:"timeOff,omitempty" cbor:"timeOff,omitempty"`
}

// =============================================================================
// IDS
// =============================================================================

func EmployeeDocID(id timeoff.EmployeeID) string {
	return strconv.FormatInt(int64(id), 10)
}

func TimeOffDocID(employeeID timeoff.EmployeeID, entryID timeoff.EntryID) string {
	return fmt.Sprintf("%d_%d", employeeID, entryID)
}

// ParseTimeOffDocID splits "{employeeId}_{entryId}".
func ParseTimeOffDocID(id string) (timeoff.EmployeeID, timeoff.EntryID, error) {
	emp, entry, ok := strings.Cut(id, "_")
	if !ok {
		return 0, 0, fmt.Errorf("%w: time off doc id %q", generic.ErrInvalidRequest, id)
	}
	e, err := strconv.ParseInt(emp, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: time off doc id %q", generic.ErrInvalidRequest, id)
	}
	t, err := strconv.ParseInt(entry, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: time off doc id %q", generic.ErrInvalidRequest, id)
	}
	return timeoff.EmployeeID(e), timeoff.EntryID(t), nil
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func EmployeeDocument(e timeoff.Employee) Document {
	return Document{
		Collection: CollectionEmployees,
		ID:         EmployeeDocID(e.ID),
		Employee: &EmployeeDoc{
			ID:                   int64(e.ID),
			Name:                 e.Name,
			JobCode:              e.JobCode,
			VacationWeeksAllowed: e.VacationWeeksAllowed,
			VacationWeeksUsed:    e.VacationWeeksUsed,
		},
	}
}

func TimeOffDocument(e timeoff.Entry) Document {
	return Document{
		Collection: CollectionTimeOff,
		ID:         TimeOffDocID(e.EmployeeID, e.ID),
		TimeOff: &TimeOffDoc{
			ID:              int64(e.ID),
			EmployeeID:      int64(e.EmployeeID),
			Date:            e.Date.String(),
			TimeOffType:     string(e.Type),
			Hours:           e.Hours,
			VacationGroupID: e.VacationGroupID,
			IsAllDay:        e.IsAllDay,
			StartTime:       e.StartTime,
			EndTime:         e.EndTime,
		},
	}
}

func (d EmployeeDoc) Employee() timeoff.Employee {
	return timeoff.Employee{
		ID:                   timeoff.EmployeeID(d.ID),
		Name:                 d.Name,
		JobCode:              d.JobCode,
		VacationWeeksAllowed: d.VacationWeeksAllowed,
		VacationWeeksUsed:    d.VacationWeeksUsed,
	}
}

// Entry converts the document back, rejecting unknown types and bad dates.
func (d TimeOffDoc) Entry() (timeoff.Entry, error) {
	date, err := generic.ParseDate(d.Date)
	if err != nil {
		return timeoff.Entry{}, fmt.Errorf("%w: %v", generic.ErrInvalidRequest, err)
	}
	typ := timeoff.Type(d.TimeOffType)
	if !typ.Valid() {
		return timeoff.Entry{}, fmt.Errorf("%w: time off type %q", generic.ErrInvalidRequest, d.TimeOffType)
	}
	return timeoff.Entry{
		ID:              timeoff.EntryID(d.ID),
		EmployeeID:      timeoff.EmployeeID(d.EmployeeID),
		Date:            date,
		Type:            typ,
		Hours:           d.Hours,
		VacationGroupID: d.VacationGroupID,
		IsAllDay:        d.IsAllDay,
		StartTime:       d.StartTime,
		EndTime:         d.EndTime,
	}, nil
}
