package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/jobcode"
)

// =============================================================================
// JOB CODE SETTINGS
// =============================================================================
//
// Codes are stored with the casing they were entered in. Lookups match on
// lower(code); NormalizeJobCodes folds case-only duplicates left by older
// databases.

const jobCodeColumns = `code, has_pto, default_daily_hours, max_hours_per_week, color_hex, sort_order`

// GetJobCodeSettings finds the settings row for code, ignoring case.
func (q *queries) GetJobCodeSettings(ctx context.Context, code jobcode.Code) (*jobcode.Settings, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+jobCodeColumns+` FROM job_code_settings
		WHERE lower(code) = ? ORDER BY rowid LIMIT 1`, code.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to query job code: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	s, err := scanJobCode(rows)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListJobCodes returns every settings row by sort order.
func (q *queries) ListJobCodes(ctx context.Context) ([]jobcode.Settings, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+jobCodeColumns+" FROM job_code_settings ORDER BY sort_order, code")
	if err != nil {
		return nil, fmt.Errorf("failed to list job codes: %w", err)
	}
	defer rows.Close()

	var all []jobcode.Settings
	for rows.Next() {
		s, err := scanJobCode(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, s)
	}
	return all, rows.Err()
}

// SaveJobCode updates the row matching s.Code (ignoring case, keeping the
// stored casing) or inserts a new one at the end of the sort order.
func (q *queries) SaveJobCode(ctx context.Context, s jobcode.Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", generic.ErrInvalidRequest, err)
	}
	if s.ColorHex == "" {
		s.ColorHex = jobcode.DefaultColorHex
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE job_code_settings SET
			has_pto = ?, default_daily_hours = ?, max_hours_per_week = ?, color_hex = ?, sort_order = ?
		WHERE lower(code) = ?`,
		boolInt(s.HasPTO), s.DefaultDailyHours.String(), s.MaxHoursPerWeek.String(),
		s.ColorHex, s.SortOrder, s.Code.Key())
	if err != nil {
		return fmt.Errorf("failed to update job code %q: %w", s.Code, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	sortOrder := s.SortOrder
	if sortOrder == 0 {
		if err := q.db.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(sort_order), 0) + 1 FROM job_code_settings",
		).Scan(&sortOrder); err != nil {
			return err
		}
	}
	_, err = q.db.ExecContext(ctx, `
		INSERT INTO job_code_settings (`+jobCodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.Code.Display(), boolInt(s.HasPTO), s.DefaultDailyHours.String(),
		s.MaxHoursPerWeek.String(), s.ColorHex, sortOrder)
	if err != nil {
		return fmt.Errorf("failed to insert job code %q: %w", s.Code, err)
	}
	return nil
}

// NormalizeJobCodes merges settings rows that differ only in case. Employees
// and shift templates are moved to the canonical casing and the other rows
// are deleted, all in one transaction.
func (s *Store) NormalizeJobCodes(ctx context.Context) ([]jobcode.Merge, error) {
	var merges []jobcode.Merge
	err := s.inTx(ctx, func(q *queries) error {
		rows, err := q.jobCodeRows(ctx)
		if err != nil {
			return err
		}
		merges = jobcode.PlanMerges(rows)

		for _, m := range merges {
			if err := q.reassignJobCode(ctx, m.Canonical.Key(), m.Canonical.Display()); err != nil {
				return err
			}
			for _, loser := range m.Losers {
				if _, err := q.db.ExecContext(ctx,
					"DELETE FROM job_code_settings WHERE code = ?", loser.Display()); err != nil {
					return fmt.Errorf("failed to delete job code %q: %w", loser, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, m := range merges {
		s.logger.WithFields(logrus.Fields{
			"canonical": m.Canonical.Display(),
			"merged":    len(m.Losers),
		}).Info("merged case-duplicate job codes")
	}
	return merges, nil
}

// RenameJobCode changes a code's settings row and every reference to it.
// Renaming to a different code that already exists fails with ErrDuplicate.
func (s *Store) RenameJobCode(ctx context.Context, from, to jobcode.Code) error {
	if to.IsZero() {
		return fmt.Errorf("%w: new job code is required", generic.ErrInvalidRequest)
	}
	return s.inTx(ctx, func(q *queries) error {
		existing, err := q.GetJobCodeSettings(ctx, from)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("job code %q: %w", from, generic.ErrEntityNotFound)
		}
		if !from.Equal(to) {
			clash, err := q.GetJobCodeSettings(ctx, to)
			if err != nil {
				return err
			}
			if clash != nil {
				return fmt.Errorf("job code %q: %w", to, generic.ErrDuplicate)
			}
		}

		if _, err := q.db.ExecContext(ctx,
			"UPDATE job_code_settings SET code = ? WHERE lower(code) = ?",
			to.Display(), from.Key()); err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("job code %q: %w", to, generic.ErrDuplicate)
			}
			return fmt.Errorf("failed to rename job code: %w", err)
		}
		return q.reassignJobCode(ctx, from.Key(), to.Display())
	})
}

// ReorderJobCodes sets sort_order to each code's position in codes.
func (s *Store) ReorderJobCodes(ctx context.Context, codes []jobcode.Code) error {
	return s.inTx(ctx, func(q *queries) error {
		for i, c := range codes {
			res, err := q.db.ExecContext(ctx,
				"UPDATE job_code_settings SET sort_order = ? WHERE lower(code) = ?", i, c.Key())
			if err != nil {
				return fmt.Errorf("failed to reorder job code %q: %w", c, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("job code %q: %w", c, generic.ErrEntityNotFound)
			}
		}
		return nil
	})
}

// reassignJobCode points employees and shift templates whose code matches
// key (ignoring case) at display.
func (q *queries) reassignJobCode(ctx context.Context, key, display string) error {
	for _, table := range []string{"employees", "shift_templates"} {
		if _, err := q.db.ExecContext(ctx,
			"UPDATE "+table+" SET job_code = ? WHERE lower(job_code) = ?", display, key); err != nil {
			return fmt.Errorf("failed to reassign %s job codes: %w", table, err)
		}
	}
	return nil
}

// jobCodeRows loads settings rows with their insert order and how many
// employees and shift templates use each exact casing.
func (q *queries) jobCodeRows(ctx context.Context) ([]jobcode.Row, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT j.rowid,
		       (SELECT COUNT(*) FROM employees e WHERE e.job_code = j.code) +
		       (SELECT COUNT(*) FROM shift_templates t WHERE t.job_code = j.code),
		       `+jobCodeColumns+`
		FROM job_code_settings j ORDER BY j.rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to load job codes: %w", err)
	}
	defer rows.Close()

	var result []jobcode.Row
	for rows.Next() {
		var r jobcode.Row
		s, err := scanJobCode(rows, &r.InsertOrder, &r.References)
		if err != nil {
			return nil, err
		}
		r.Settings = s
		result = append(result, r)
	}
	return result, rows.Err()
}

// scanJobCode scans jobCodeColumns, after any leading destinations.
func scanJobCode(rows *sql.Rows, leading ...any) (jobcode.Settings, error) {
	var (
		code, daily, weekly string
		hasPTO              int
		s                   jobcode.Settings
	)
	dest := append(leading, &code, &hasPTO, &daily, &weekly, &s.ColorHex, &s.SortOrder)
	if err := rows.Scan(dest...); err != nil {
		return jobcode.Settings{}, err
	}

	var err error
	if s.DefaultDailyHours, err = decimal.NewFromString(daily); err != nil {
		return jobcode.Settings{}, fmt.Errorf("job code %q daily hours: %w", code, err)
	}
	if s.MaxHoursPerWeek, err = decimal.NewFromString(weekly); err != nil {
		return jobcode.Settings{}, fmt.Errorf("job code %q weekly hours: %w", code, err)
	}
	s.Code = jobcode.NewCode(code)
	s.HasPTO = hasPTO != 0
	return s, nil
}
