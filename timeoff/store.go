/*
store.go - Persistence interface for the time-off rules

PURPOSE:
  The accrual service and request service only talk to this interface.
  The store is plain CRUD: it performs no rule enforcement, so any writer
  that skips Service.Request can create overlapping entries or overdraw PTO.

IMPLEMENTATIONS:
  - store/sqlite: production local database
  - store/memory: in-memory, for tests

LOOKUP CONVENTION:
  Get* methods return (nil, nil) when the record does not exist.
*/
package timeoff

import (
	"context"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/jobcode"
)

// Store is the time-off persistence surface.
type Store interface {
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	AdjustVacationWeeksUsed(ctx context.Context, id EmployeeID, delta int) error

	// TimeOffInRange returns the employee's entries dated within [from, to],
	// ordered by date then id.
	TimeOffInRange(ctx context.Context, id EmployeeID, from, to generic.Date) ([]Entry, error)
	GetTimeOff(ctx context.Context, id EntryID) (*Entry, error)
	TimeOffByGroup(ctx context.Context, groupID string) ([]Entry, error)
	InsertTimeOff(ctx context.Context, e Entry) (EntryID, error)
	DeleteTimeOff(ctx context.Context, id EntryID) error

	GetHistory(ctx context.Context, id EmployeeID, trimesterStart generic.Date) (*HistoryRecord, error)
	SaveHistory(ctx context.Context, rec HistoryRecord) error

	GetSettings(ctx context.Context) (Rules, error)
	GetJobCodeSettings(ctx context.Context, code jobcode.Code) (*jobcode.Settings, error)
}

// TxStore runs grouped writes atomically.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}
