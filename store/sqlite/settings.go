package sqlite

import (
	"context"
	"fmt"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/timeoff"
)

// =============================================================================
// PTO HISTORY
// =============================================================================

// GetHistory returns the banked carryover for (employee, trimesterStart).
func (q *queries) GetHistory(ctx context.Context, id timeoff.EmployeeID, trimesterStart generic.Date) (*timeoff.HistoryRecord, error) {
	rec := timeoff.HistoryRecord{EmployeeID: id, TrimesterStart: trimesterStart}
	err := q.db.QueryRowContext(ctx, `
		SELECT carryover_hours FROM pto_history
		WHERE employee_id = ? AND trimester_start = ?`,
		id, trimesterStart.String(),
	).Scan(&rec.CarryoverHours)
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveHistory upserts on (employee_id, trimester_start).
func (q *queries) SaveHistory(ctx context.Context, rec timeoff.HistoryRecord) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO pto_history (employee_id, trimester_start, carryover_hours)
		VALUES (?, ?, ?)
		ON CONFLICT(employee_id, trimester_start) DO UPDATE SET
			carryover_hours = excluded.carryover_hours`,
		rec.EmployeeID, rec.TrimesterStart.String(), rec.CarryoverHours)
	if err != nil {
		return fmt.Errorf("failed to save pto history: %w", err)
	}
	return nil
}

// ListHistory returns an employee's banked carryover, oldest first.
func (q *queries) ListHistory(ctx context.Context, id timeoff.EmployeeID) ([]timeoff.HistoryRecord, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT trimester_start, carryover_hours FROM pto_history
		WHERE employee_id = ? ORDER BY trimester_start`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []timeoff.HistoryRecord
	for rows.Next() {
		var start string
		rec := timeoff.HistoryRecord{EmployeeID: id}
		if err := rows.Scan(&start, &rec.CarryoverHours); err != nil {
			return nil, err
		}
		if rec.TrimesterStart, err = generic.ParseDate(start); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// SETTINGS (single row)
// =============================================================================

// GetSettings returns the PTO rules, or timeoff.DefaultRules() when the row
// has not been written yet.
func (q *queries) GetSettings(ctx context.Context) (timeoff.Rules, error) {
	var r timeoff.Rules
	var block int
	err := q.db.QueryRowContext(ctx, `
		SELECT pto_hours_per_trimester, pto_hours_per_request, max_carryover_hours, block_overlaps
		FROM settings WHERE id = 1`,
	).Scan(&r.PTOHoursPerTrimester, &r.PTOHoursPerRequest, &r.MaxCarryoverHours, &block)
	if notFound(err) {
		return timeoff.DefaultRules(), nil
	}
	if err != nil {
		return timeoff.Rules{}, fmt.Errorf("failed to load settings: %w", err)
	}
	r.BlockOverlaps = block != 0
	return r, nil
}

// SaveSettings validates and upserts the settings row.
func (q *queries) SaveSettings(ctx context.Context, r timeoff.Rules) error {
	if err := r.Validate(); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO settings (id, pto_hours_per_trimester, pto_hours_per_request, max_carryover_hours, block_overlaps)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pto_hours_per_trimester = excluded.pto_hours_per_trimester,
			pto_hours_per_request = excluded.pto_hours_per_request,
			max_carryover_hours = excluded.max_carryover_hours,
			block_overlaps = excluded.block_overlaps`,
		r.PTOHoursPerTrimester, r.PTOHoursPerRequest, r.MaxCarryoverHours, boolInt(r.BlockOverlaps))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// SeedSettings writes r only if no settings row exists. It reports whether
// it wrote.
func (q *queries) SeedSettings(ctx context.Context, r timeoff.Rules) (bool, error) {
	if err := r.Validate(); err != nil {
		return false, err
	}
	res, err := q.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO settings (id, pto_hours_per_trimester, pto_hours_per_request, max_carryover_hours, block_overlaps)
		VALUES (1, ?, ?, ?, ?)`,
		r.PTOHoursPerTrimester, r.PTOHoursPerRequest, r.MaxCarryoverHours, boolInt(r.BlockOverlaps))
	if err != nil {
		return false, fmt.Errorf("failed to seed settings: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
