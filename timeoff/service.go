/*
service.go - Recording and removing time off

PURPOSE:
  The single entry point managers' actions go through. The store enforces
  nothing; this service applies the rules before every write.

REQUEST FLOW:
  1. Validate the request shape
  2. The employee must exist
  3. PTO only: hours/day x days must fit in the trimester of the first day
  4. Overlap: any existing entry (any type) on any requested day conflicts.
     Time of day is ignored.
       BlockOverlaps = true  -> OverlapError{Blocked: true}, nothing written
       BlockOverlaps = false -> OverlapError{Blocked: false} unless the
                                request sets Override, in which case the new
                                rows are written next to the old ones
  5. Expand into per-day rows and insert them in one transaction. Vacation
     groups also bump the employee's vacation weeks used.

DELETION:
  Deleting an entry with a vacation group id deletes the whole group,
  re-fetched by group id, in one transaction. Ungrouped entries go alone.
*/
package timeoff

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/schedulehq/schedule-engine/generic"
)

type Service struct {
	store      TxStore
	accrual    *AccrualService
	logger     logrus.FieldLogger
	newGroupID func() string
}

func NewService(store TxStore, accrual *AccrualService) *Service {
	return &Service{
		store:      store,
		accrual:    accrual,
		logger:     logrus.StandardLogger(),
		newGroupID: NewGroupID,
	}
}

// WithLogger replaces the service logger.
func (s *Service) WithLogger(logger logrus.FieldLogger) *Service {
	s.logger = logger
	return s
}

// Result describes what Request wrote.
type Result struct {
	Entries   []Entry
	Conflicts []Entry     // non-empty only when Override was used
	Balance   *PTOBalance // PTO requests only, as checked before the write
}

// DeleteResult is reported back for the confirmation message.
type DeleteResult struct {
	EmployeeID   EmployeeID
	EmployeeName string
	GroupID      string
	Count        int
}

// Conflicts returns the employee's entries dated within [start, end].
func (s *Service) Conflicts(ctx context.Context, employeeID EmployeeID, start, end generic.Date) ([]Entry, error) {
	p := generic.Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.store.TimeOffInRange(ctx, employeeID, start, end)
}

// List returns the employee's entries within [from, to] for display.
func (s *Service) List(ctx context.Context, employeeID EmployeeID, from, to generic.Date) ([]Entry, error) {
	return s.Conflicts(ctx, employeeID, from, to)
}

// Request applies the PTO and overlap rules and records the time off.
func (s *Service) Request(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := s.logger.WithFields(logrus.Fields{
		"employee_id": req.EmployeeID,
		"type":        req.Type,
		"start":       req.Start.String(),
		"days":        req.Days,
	})

	emp, err := s.store.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("load employee %d: %w", req.EmployeeID, err)
	}
	if emp == nil {
		return nil, fmt.Errorf("employee %d: %w", req.EmployeeID, generic.ErrEntityNotFound)
	}

	rules, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	result := &Result{}
	if req.Type == TypePTO {
		balance, err := s.accrual.CheckRequest(ctx, req.EmployeeID, req.Start, req.hoursPerDay(rules), req.Days)
		if err != nil {
			log.WithError(err).Info("PTO request rejected")
			return nil, err
		}
		result.Balance = &balance
	}

	span := req.Range()
	conflicts, err := s.store.TimeOffInRange(ctx, req.EmployeeID, span.Start, span.End)
	if err != nil {
		return nil, fmt.Errorf("check overlaps: %w", err)
	}
	if len(conflicts) > 0 {
		if rules.BlockOverlaps || !req.Override {
			overlap := &OverlapError{
				EmployeeID: req.EmployeeID,
				Range:      span,
				Conflicts:  conflicts,
				Blocked:    rules.BlockOverlaps,
			}
			log.WithField("blocked", overlap.Blocked).Info("time off overlaps existing entries")
			return nil, overlap
		}
		result.Conflicts = conflicts
		log.WithField("conflicts", len(conflicts)).Warn("recording overlapping time off on manager override")
	}

	entries := BuildBatch(req, rules, s.newGroupID())
	err = s.store.WithTx(ctx, func(tx Store) error {
		for i := range entries {
			id, err := tx.InsertTimeOff(ctx, entries[i])
			if err != nil {
				return fmt.Errorf("insert time off %s: %w", entries[i].Date, err)
			}
			entries[i].ID = id
		}
		if req.Type == TypeVacation {
			return tx.AdjustVacationWeeksUsed(ctx, req.EmployeeID, VacationWeeks(len(entries)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Entries = entries
	log.WithFields(logrus.Fields{
		"group_id": entries[0].VacationGroupID,
		"count":    len(entries),
	}).Info("time off recorded")
	return result, nil
}

// Delete removes an entry, or its whole vacation group when it has one.
func (s *Service) Delete(ctx context.Context, id EntryID) (*DeleteResult, error) {
	entry, err := s.store.GetTimeOff(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load time off %d: %w", id, err)
	}
	if entry == nil {
		return nil, fmt.Errorf("time off %d: %w", id, generic.ErrEntityNotFound)
	}

	var targets []Entry
	err = s.store.WithTx(ctx, func(tx Store) error {
		targets = []Entry{*entry}
		if entry.Grouped() {
			group, err := tx.TimeOffByGroup(ctx, entry.VacationGroupID)
			if err != nil {
				return fmt.Errorf("load group %s: %w", entry.VacationGroupID, err)
			}
			targets = group
		}
		for _, t := range targets {
			if err := tx.DeleteTimeOff(ctx, t.ID); err != nil {
				return fmt.Errorf("delete time off %d: %w", t.ID, err)
			}
		}
		if entry.Grouped() && entry.Type == TypeVacation {
			return tx.AdjustVacationWeeksUsed(ctx, entry.EmployeeID, -VacationWeeks(len(targets)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{
		EmployeeID: entry.EmployeeID,
		GroupID:    entry.VacationGroupID,
		Count:      len(targets),
	}
	if emp, err := s.store.GetEmployee(ctx, entry.EmployeeID); err == nil && emp != nil {
		result.EmployeeName = emp.Name
	}

	s.logger.WithFields(logrus.Fields{
		"employee_id": entry.EmployeeID,
		"group_id":    entry.VacationGroupID,
		"count":       result.Count,
	}).Info("time off deleted")
	return result, nil
}
