/*
accrual.go - Trimester PTO accrual

PURPOSE:
  Answers "how many PTO hours does this employee have left?" for the
  trimester containing a date, and banks carryover when a trimester closes.

TRIMESTERS:
  Jan 1 - Apr 30, May 1 - Aug 31, Sep 1 - Dec 31 (generic.TrimesterFor).
  Remaining hours are trimester-scoped: every date inside one trimester
  yields the same answer.

REMAINING HOURS:
  used        = sum of "pto" hours dated inside the trimester
  carryover   = pto_history row for (employee, trimester start), or, when
                absent, Carryover(prevEntitlement, prevUsed, maxCarryover)
  entitlement = PTOHoursPerTrimester + carryover
  remaining   = entitlement - used

  prevEntitlement is PTOHoursPerTrimester plus the previous trimester's
  banked carryover if one was recorded. Unbanked carryover is never chained
  further back.

  Remaining is reported as-is, negative included. Gating decisions use
  PTOBalance.Available(), which clamps at zero.

ELIGIBILITY:
  Unknown employees get a zero balance. Employees whose job code has
  HasPTO=false get zero entitlement and zero carryover.

CLOSING A TRIMESTER:
  CloseTrimester writes the carryover RemainingForDate would compute for the
  next trimester into pto_history, so later reads stop recomputing it.
*/
package timeoff

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/jobcode"
)

// =============================================================================
// PTO BALANCE
// =============================================================================

type PTOBalance struct {
	EmployeeID         EmployeeID
	Trimester          generic.Period
	Eligible           bool
	Used               int
	Carryover          int
	CarryoverPersisted bool
	Entitlement        int
	Remaining          int
}

// Available is what a new request may use. Negative remaining (from data
// entered around the gate) counts as nothing available.
func (b PTOBalance) Available() int {
	if b.Remaining < 0 {
		return 0
	}
	return b.Remaining
}

// Carryover is the hours rolling into the next trimester: whatever was left
// unused, clamped to [0, maxCarryover].
func Carryover(entitlement, used, maxCarryover int) int {
	unused := entitlement - used
	if unused < 0 {
		return 0
	}
	if unused > maxCarryover {
		return maxCarryover
	}
	return unused
}

// =============================================================================
// ACCRUAL SERVICE
// =============================================================================

type AccrualService struct {
	store   Store
	periods generic.PeriodConfig
	logger  logrus.FieldLogger
}

func NewAccrualService(store Store) *AccrualService {
	return &AccrualService{
		store:   store,
		periods: generic.Trimesters,
		logger:  logrus.StandardLogger(),
	}
}

// WithLogger replaces the service logger.
func (s *AccrualService) WithLogger(logger logrus.FieldLogger) *AccrualService {
	s.logger = logger
	return s
}

// RemainingForDate computes the PTO balance for the trimester containing date.
// It has no side effects.
//
// Carryover that was computed but never banked is not passed on: when neither
// this trimester nor the previous one has a pto_history row, the previous
// trimester's entitlement is taken as PTOHoursPerTrimester alone. Hours shown
// as remaining in T1 can therefore be missing from T2's carryover until the
// carryover into T1 is banked by closing the trimester before it.
func (s *AccrualService) RemainingForDate(ctx context.Context, employeeID EmployeeID, date generic.Date) (PTOBalance, error) {
	rules, err := s.store.GetSettings(ctx)
	if err != nil {
		return PTOBalance{}, fmt.Errorf("load settings: %w", err)
	}
	return s.balance(ctx, rules, employeeID, s.periods.PeriodFor(date))
}

func (s *AccrualService) balance(ctx context.Context, rules Rules, employeeID EmployeeID, trimester generic.Period) (PTOBalance, error) {
	balance := PTOBalance{EmployeeID: employeeID, Trimester: trimester}

	eligible, err := s.eligible(ctx, employeeID)
	if err != nil {
		return PTOBalance{}, err
	}

	used, err := usedPTO(ctx, s.store, employeeID, trimester)
	if err != nil {
		return PTOBalance{}, err
	}
	balance.Used = used

	if eligible {
		balance.Eligible = true
		carryover, persisted, err := s.carryoverInto(ctx, rules, employeeID, trimester)
		if err != nil {
			return PTOBalance{}, err
		}
		balance.Carryover = carryover
		balance.CarryoverPersisted = persisted
		balance.Entitlement = rules.PTOHoursPerTrimester + carryover
	}

	balance.Remaining = balance.Entitlement - balance.Used
	return balance, nil
}

// eligible is false for unknown employees and for job codes without PTO.
func (s *AccrualService) eligible(ctx context.Context, employeeID EmployeeID) (bool, error) {
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return false, fmt.Errorf("load employee %d: %w", employeeID, err)
	}
	if emp == nil {
		s.logger.WithField("employee_id", employeeID).Debug("PTO lookup for unknown employee")
		return false, nil
	}

	code := jobcode.NewCode(emp.JobCode)
	if code.IsZero() {
		return true, nil
	}
	settings, err := s.store.GetJobCodeSettings(ctx, code)
	if err != nil {
		return false, fmt.Errorf("load job code %q: %w", code, err)
	}
	if settings == nil {
		return true, nil
	}
	return settings.HasPTO, nil
}

// carryoverInto returns the carryover for trimester and whether it came from
// pto_history.
func (s *AccrualService) carryoverInto(ctx context.Context, rules Rules, employeeID EmployeeID, trimester generic.Period) (int, bool, error) {
	banked, err := s.store.GetHistory(ctx, employeeID, trimester.Start)
	if err != nil {
		return 0, false, fmt.Errorf("load pto history: %w", err)
	}
	if banked != nil {
		return banked.CarryoverHours, true, nil
	}

	previous := s.periods.Previous(trimester)
	prevEntitlement := rules.PTOHoursPerTrimester
	prevBanked, err := s.store.GetHistory(ctx, employeeID, previous.Start)
	if err != nil {
		return 0, false, fmt.Errorf("load pto history: %w", err)
	}
	if prevBanked != nil {
		prevEntitlement += prevBanked.CarryoverHours
	}

	prevUsed, err := usedPTO(ctx, s.store, employeeID, previous)
	if err != nil {
		return 0, false, err
	}
	return Carryover(prevEntitlement, prevUsed, rules.MaxCarryoverHours), false, nil
}

func usedPTO(ctx context.Context, store Store, employeeID EmployeeID, trimester generic.Period) (int, error) {
	entries, err := store.TimeOffInRange(ctx, employeeID, trimester.Start, trimester.End)
	if err != nil {
		return 0, fmt.Errorf("load time off: %w", err)
	}
	used := 0
	for _, e := range entries {
		if e.Type == TypePTO {
			used += e.Hours
		}
	}
	return used, nil
}

// =============================================================================
// INSUFFICIENT-PTO GATE
// =============================================================================

// CheckRequest verifies that hoursPerDay x days fits in the trimester of the
// first day. Requests running into the next trimester are not split: all
// hours count against the first one.
func (s *AccrualService) CheckRequest(ctx context.Context, employeeID EmployeeID, first generic.Date, hoursPerDay, days int) (PTOBalance, error) {
	if days < 1 || days > MaxRequestDays {
		return PTOBalance{}, fmt.Errorf("%w: days must be between 1 and %d", generic.ErrInvalidRequest, MaxRequestDays)
	}
	if hoursPerDay < 0 {
		return PTOBalance{}, fmt.Errorf("%w: hours per day must not be negative", generic.ErrInvalidRequest)
	}

	balance, err := s.RemainingForDate(ctx, employeeID, first)
	if err != nil {
		return PTOBalance{}, err
	}

	// hoursPerDay x days > available, compared without multiplying.
	if hoursPerDay > 0 && days > balance.Available()/hoursPerDay {
		return balance, &InsufficientPTOError{
			EmployeeID: employeeID,
			Trimester:  balance.Trimester,
			Requested:  requestedHours(hoursPerDay, days),
			Available:  balance.Available(),
			Remaining:  balance.Remaining,
		}
	}
	return balance, nil
}

// requestedHours saturates at math.MaxInt instead of wrapping.
func requestedHours(hoursPerDay, days int) int {
	if hoursPerDay > math.MaxInt/days {
		return math.MaxInt
	}
	return hoursPerDay * days
}

// =============================================================================
// CLOSING TRIMESTERS
// =============================================================================

// CloseTrimester banks the carryover from the trimester containing date into
// the next trimester. Running it twice writes the same row.
func (s *AccrualService) CloseTrimester(ctx context.Context, employeeID EmployeeID, date generic.Date) (HistoryRecord, error) {
	rules, err := s.store.GetSettings(ctx)
	if err != nil {
		return HistoryRecord{}, fmt.Errorf("load settings: %w", err)
	}

	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return HistoryRecord{}, fmt.Errorf("load employee %d: %w", employeeID, err)
	}
	if emp == nil {
		return HistoryRecord{}, fmt.Errorf("employee %d: %w", employeeID, generic.ErrEntityNotFound)
	}

	return s.closeTrimester(ctx, rules, employeeID, s.periods.PeriodFor(date))
}

// CloseTrimesterAll closes the trimester containing date for every employee.
func (s *AccrualService) CloseTrimesterAll(ctx context.Context, date generic.Date) ([]HistoryRecord, error) {
	rules, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	ending := s.periods.PeriodFor(date)
	records := make([]HistoryRecord, 0, len(employees))
	for _, emp := range employees {
		rec, err := s.closeTrimester(ctx, rules, emp.ID, ending)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *AccrualService) closeTrimester(ctx context.Context, rules Rules, employeeID EmployeeID, ending generic.Period) (HistoryRecord, error) {
	next := s.periods.Next(ending)

	carryover := 0
	eligible, err := s.eligible(ctx, employeeID)
	if err != nil {
		return HistoryRecord{}, err
	}
	if eligible {
		endingBalance, err := s.balance(ctx, rules, employeeID, ending)
		if err != nil {
			return HistoryRecord{}, err
		}
		// Same rule as the on-the-fly path: only banked carryover of the
		// ending trimester feeds the next one.
		prevEntitlement := rules.PTOHoursPerTrimester
		if endingBalance.CarryoverPersisted {
			prevEntitlement += endingBalance.Carryover
		}
		carryover = Carryover(prevEntitlement, endingBalance.Used, rules.MaxCarryoverHours)
	}

	rec := HistoryRecord{EmployeeID: employeeID, TrimesterStart: next.Start, CarryoverHours: carryover}
	if err := s.store.SaveHistory(ctx, rec); err != nil {
		return HistoryRecord{}, fmt.Errorf("save pto history: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"employee_id": employeeID,
		"trimester":   generic.TrimesterLabel(next),
		"carryover":   carryover,
	}).Info("trimester closed")
	return rec, nil
}
