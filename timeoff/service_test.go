package timeoff_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/store/memory"
	"github.com/schedulehq/schedule-engine/timeoff"
)

func newService(store *memory.Memory) *timeoff.Service {
	return timeoff.NewService(store, timeoff.NewAccrualService(store))
}

func vacation(start generic.Date, days int) timeoff.Request {
	return timeoff.Request{EmployeeID: alice, Type: timeoff.TypeVacation, Start: start, Days: days}
}

func requestedAllDay(d generic.Date) timeoff.Request {
	return timeoff.Request{EmployeeID: alice, Type: timeoff.TypeRequested, Start: d, Days: 1, IsAllDay: true}
}

// =============================================================================
// RECORDING
// =============================================================================

func TestRequest_VacationIsGroupedAndCountsWeeks(t *testing.T) {
	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	result, err := svc.Request(ctx, vacation(date(2024, time.July, 1), 8))
	require.NoError(t, err)
	require.Len(t, result.Entries, 8)

	groupID := result.Entries[0].VacationGroupID
	require.NotEmpty(t, groupID)
	for i, e := range result.Entries {
		assert.Equal(t, groupID, e.VacationGroupID)
		assert.Equal(t, timeoff.VacationHoursPerDay, e.Hours)
		assert.Equal(t, date(2024, time.July, 1).AddDays(i), e.Date)
		assert.NotZero(t, e.ID)
	}

	emp, err := store.GetEmployee(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, emp.VacationWeeksUsed)
}

func TestRequest_UnknownEmployee(t *testing.T) {
	svc := newService(newStore(t))

	_, err := svc.Request(context.Background(), timeoff.Request{
		EmployeeID: 77, Type: timeoff.TypeVacation, Start: date(2024, time.July, 1), Days: 1,
	})
	assert.True(t, errors.Is(err, generic.ErrEntityNotFound))
}

func TestRequest_InvalidShapeRejected(t *testing.T) {
	svc := newService(newStore(t))
	ctx := context.Background()

	_, err := svc.Request(ctx, timeoff.Request{EmployeeID: alice, Type: "holiday", Start: date(2024, time.July, 1), Days: 1})
	assert.True(t, errors.Is(err, generic.ErrInvalidRequest))

	_, err = svc.Request(ctx, timeoff.Request{EmployeeID: alice, Type: timeoff.TypePTO, Start: date(2024, time.July, 1)})
	assert.True(t, errors.Is(err, generic.ErrInvalidRequest))
}

func TestRequest_OversizedDaysRejectedBeforeExpanding(t *testing.T) {
	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	for _, typ := range []timeoff.Type{timeoff.TypePTO, timeoff.TypeVacation} {
		_, err := svc.Request(ctx, timeoff.Request{
			EmployeeID: alice, Type: typ, Start: date(2024, time.March, 1), Days: 1 << 61, HoursPerDay: 8,
		})
		assert.True(t, errors.Is(err, generic.ErrInvalidRequest), "type %s", typ)
	}
	assert.Equal(t, 0, store.Len())
}

func TestRequest_PTOGateRejectsBeforeWriting(t *testing.T) {
	store := newStore(t)
	store.SetRules(timeoff.Rules{PTOHoursPerTrimester: 40, PTOHoursPerRequest: 8})
	addPTO(t, store, date(2024, time.March, 1), 30)
	svc := newService(store)

	_, err := svc.Request(context.Background(), timeoff.Request{
		EmployeeID: alice, Type: timeoff.TypePTO, Start: date(2024, time.April, 30), Days: 3, HoursPerDay: 16,
	})

	var insufficient *timeoff.InsufficientPTOError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 1, store.Len(), "nothing written")
}

func TestRequest_PTODefaultsToHoursPerRequest(t *testing.T) {
	store := newStore(t)
	store.SetRules(timeoff.Rules{PTOHoursPerTrimester: 40, PTOHoursPerRequest: 6, MaxCarryoverHours: 8})
	svc := newService(store)

	result, err := svc.Request(context.Background(), timeoff.Request{
		EmployeeID: alice, Type: timeoff.TypePTO, Start: date(2024, time.May, 6), Days: 1,
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, 6, result.Entries[0].Hours)
	assert.Empty(t, result.Entries[0].VacationGroupID, "single-day PTO is not grouped")
	require.NotNil(t, result.Balance)
	assert.Equal(t, 48, result.Balance.Remaining)
}

func TestRequest_PartialDayRequested(t *testing.T) {
	svc := newService(newStore(t))

	result, err := svc.Request(context.Background(), timeoff.Request{
		EmployeeID: alice, Type: timeoff.TypeRequested, Start: date(2024, time.July, 4), Days: 1,
		StartTime: "09:00", EndTime: "13:00",
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)

	e := result.Entries[0]
	assert.Equal(t, timeoff.TypeRequested, e.Type)
	assert.False(t, e.IsAllDay)
	assert.Equal(t, "09:00", e.StartTime)
	assert.Equal(t, "13:00", e.EndTime)
	assert.Equal(t, 4, e.Hours)
}

func TestRequest_PartialHoursRoundUp(t *testing.T) {
	tests := []struct {
		start, end string
		hours      int
	}{
		{"09:00", "09:30", 1},
		{"09:00", "10:45", 2},
		{"08:30", "12:00", 4},
		{"09:00", "12:00", 3},
	}
	for _, tt := range tests {
		t.Run(tt.start+"-"+tt.end, func(t *testing.T) {
			svc := newService(newStore(t))
			result, err := svc.Request(context.Background(), timeoff.Request{
				EmployeeID: alice, Type: timeoff.TypeRequested, Start: date(2024, time.July, 4), Days: 1,
				StartTime: tt.start, EndTime: tt.end,
			})
			require.NoError(t, err)
			require.Len(t, result.Entries, 1)
			assert.Equal(t, tt.hours, result.Entries[0].Hours)
		})
	}
}

// =============================================================================
// OVERLAPS
// =============================================================================

func TestRequest_OverlapBlocked(t *testing.T) {
	// GIVEN: blockOverlaps = true and a vacation on 2024-07-04
	// WHEN: Requesting all-day time off on 2024-07-04, with override
	// THEN: Blocked, nothing written

	store := newStore(t)
	rules := timeoff.DefaultRules()
	rules.BlockOverlaps = true
	store.SetRules(rules)
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.Request(ctx, vacation(date(2024, time.July, 4), 1))
	require.NoError(t, err)

	req := requestedAllDay(date(2024, time.July, 4))
	req.Override = true
	_, err = svc.Request(ctx, req)

	var overlap *timeoff.OverlapError
	require.True(t, errors.As(err, &overlap))
	assert.True(t, errors.Is(err, generic.ErrOverlap))
	assert.True(t, overlap.Blocked)
	assert.Equal(t, []generic.Date{date(2024, time.July, 4)}, overlap.ConflictDates())
	assert.Equal(t, 1, store.Len())
}

func TestRequest_OverlapWarnsThenOverride(t *testing.T) {
	// GIVEN: blockOverlaps = false and a vacation on 2024-07-04
	// WHEN: Requesting time off on that day without, then with, override
	// THEN: First attempt reports the conflict; the override writes it

	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.Request(ctx, vacation(date(2024, time.July, 4), 1))
	require.NoError(t, err)

	_, err = svc.Request(ctx, requestedAllDay(date(2024, time.July, 4)))
	var overlap *timeoff.OverlapError
	require.True(t, errors.As(err, &overlap))
	assert.False(t, overlap.Blocked)
	assert.Equal(t, 1, store.Len())

	req := requestedAllDay(date(2024, time.July, 4))
	req.Override = true
	result, err := svc.Request(ctx, req)
	require.NoError(t, err)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, timeoff.TypeVacation, result.Conflicts[0].Type)
	assert.Equal(t, 2, store.Len())
}

func TestConflicts_InclusiveEndpoints(t *testing.T) {
	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.Request(ctx, requestedAllDay(date(2024, time.March, 1)))
	require.NoError(t, err)
	_, err = svc.Request(ctx, requestedAllDay(date(2024, time.March, 10)))
	require.NoError(t, err)

	conflicts, err := svc.Conflicts(ctx, alice, date(2024, time.March, 1), date(2024, time.March, 10))
	require.NoError(t, err)
	assert.Len(t, conflicts, 2)

	conflicts, err = svc.Conflicts(ctx, alice, date(2024, time.March, 2), date(2024, time.March, 9))
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	_, err = svc.Conflicts(ctx, alice, date(2024, time.March, 10), date(2024, time.March, 1))
	assert.True(t, errors.Is(err, generic.ErrInvalidPeriod))
}

func TestRequest_MultiDayOverlapDetectsMiddleDay(t *testing.T) {
	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.Request(ctx, requestedAllDay(date(2024, time.August, 14)))
	require.NoError(t, err)

	_, err = svc.Request(ctx, vacation(date(2024, time.August, 12), 5))
	var overlap *timeoff.OverlapError
	require.True(t, errors.As(err, &overlap))
	assert.Equal(t, []generic.Date{date(2024, time.August, 14)}, overlap.ConflictDates())
}

// =============================================================================
// DELETION
// =============================================================================

func TestDelete_GroupRemovesEveryDay(t *testing.T) {
	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	result, err := svc.Request(ctx, vacation(date(2024, time.July, 8), 5))
	require.NoError(t, err)
	_, err = svc.Request(ctx, requestedAllDay(date(2024, time.July, 20)))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, result.Entries[2].ID)
	require.NoError(t, err)

	assert.Equal(t, 5, deleted.Count)
	assert.Equal(t, "Alice", deleted.EmployeeName)
	assert.Equal(t, result.Entries[0].VacationGroupID, deleted.GroupID)
	assert.Equal(t, 1, store.Len())

	emp, err := store.GetEmployee(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, emp.VacationWeeksUsed)
}

// outerReads counts group lookups made outside a transaction.
type outerReads struct {
	*memory.Memory
	groupReads int
}

func (o *outerReads) TimeOffByGroup(ctx context.Context, groupID string) ([]timeoff.Entry, error) {
	o.groupReads++
	return o.Memory.TimeOffByGroup(ctx, groupID)
}

func TestDelete_ReadsGroupInsideTransaction(t *testing.T) {
	store := &outerReads{Memory: newStore(t)}
	svc := timeoff.NewService(store, timeoff.NewAccrualService(store))
	ctx := context.Background()

	result, err := svc.Request(ctx, vacation(date(2024, time.July, 8), 3))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, result.Entries[0].ID)
	require.NoError(t, err)

	assert.Equal(t, 3, deleted.Count)
	assert.Equal(t, 0, store.groupReads, "group read through the transaction")
	assert.Equal(t, 0, store.Len())
}

func TestDelete_UngroupedRemovesOne(t *testing.T) {
	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	first, err := svc.Request(ctx, requestedAllDay(date(2024, time.July, 1)))
	require.NoError(t, err)
	_, err = svc.Request(ctx, requestedAllDay(date(2024, time.July, 2)))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, first.Entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted.Count)
	assert.Empty(t, deleted.GroupID)
	assert.Equal(t, 1, store.Len())
}

func TestDelete_MultiDayPTOGroup(t *testing.T) {
	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	result, err := svc.Request(ctx, timeoff.Request{
		EmployeeID: alice, Type: timeoff.TypePTO, Start: date(2024, time.May, 6), Days: 3,
	})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, result.Entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted.Count)
	assert.Equal(t, 0, store.Len())

	emp, err := store.GetEmployee(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, emp.VacationWeeksUsed, "PTO groups leave vacation weeks alone")
}

func TestDelete_Missing(t *testing.T) {
	svc := newService(newStore(t))

	_, err := svc.Delete(context.Background(), 404)
	assert.True(t, errors.Is(err, generic.ErrEntityNotFound))
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx timeoff.Store) error {
		_, err := tx.InsertTimeOff(ctx, timeoff.Entry{EmployeeID: alice, Date: date(2024, time.July, 1), Type: timeoff.TypeVacation, Hours: 8})
		require.NoError(t, err)
		require.NoError(t, tx.AdjustVacationWeeksUsed(ctx, alice, 1))
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 0, store.Len())
	emp, err := store.GetEmployee(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, emp.VacationWeeksUsed)
}
