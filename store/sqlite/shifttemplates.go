package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/schedulehq/schedule-engine/generic"
)

// =============================================================================
// SHIFT TEMPLATES
// =============================================================================

// WorkDaysPerWeek is how many days a template is assumed to run when
// checking it against a job code's weekly limit.
const WorkDaysPerWeek = 5

// ShiftTemplate is a reusable shift. JobCode is stored with the casing used
// by the job code settings row.
type ShiftTemplate struct {
	ID        int64
	Name      string
	JobCode   string
	StartTime string // HH:MM
	EndTime   string // HH:MM
}

func (t ShiftTemplate) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: template name is required", generic.ErrInvalidRequest)
	}
	start, err := generic.ParseClock(t.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start time: %v", generic.ErrInvalidRequest, err)
	}
	end, err := generic.ParseClock(t.EndTime)
	if err != nil {
		return fmt.Errorf("%w: end time: %v", generic.ErrInvalidRequest, err)
	}
	if end <= start {
		return fmt.Errorf("%w: template ends before it starts", generic.ErrInvalidRequest)
	}
	return nil
}

// Hours is the length of the shift.
func (t ShiftTemplate) Hours() decimal.Decimal {
	start, _ := generic.ParseClock(t.StartTime)
	end, _ := generic.ParseClock(t.EndTime)
	return decimal.NewFromInt(int64(end - start)).Div(decimal.NewFromInt(60))
}

// WeeklyHours is Hours over WorkDaysPerWeek days.
func (t ShiftTemplate) WeeklyHours() decimal.Decimal {
	return t.Hours().Mul(decimal.NewFromInt(WorkDaysPerWeek))
}

// SaveShiftTemplate inserts (ID zero) or updates a template and returns its ID.
func (q *queries) SaveShiftTemplate(ctx context.Context, t ShiftTemplate) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if t.ID == 0 {
		res, err := q.db.ExecContext(ctx, `
			INSERT INTO shift_templates (name, job_code, start_time, end_time)
			VALUES (?, ?, ?, ?)`,
			strings.TrimSpace(t.Name), strings.TrimSpace(t.JobCode), t.StartTime, t.EndTime)
		if err != nil {
			return 0, fmt.Errorf("failed to insert shift template: %w", err)
		}
		return res.LastInsertId()
	}

	res, err := q.db.ExecContext(ctx, `
		UPDATE shift_templates SET name = ?, job_code = ?, start_time = ?, end_time = ?
		WHERE id = ?`,
		strings.TrimSpace(t.Name), strings.TrimSpace(t.JobCode), t.StartTime, t.EndTime, t.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update shift template %d: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("shift template %d: %w", t.ID, generic.ErrEntityNotFound)
	}
	return t.ID, nil
}

// ListShiftTemplates returns every template ordered by name.
func (q *queries) ListShiftTemplates(ctx context.Context) ([]ShiftTemplate, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT id, name, job_code, start_time, end_time FROM shift_templates ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list shift templates: %w", err)
	}
	defer rows.Close()

	var templates []ShiftTemplate
	for rows.Next() {
		var t ShiftTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.JobCode, &t.StartTime, &t.EndTime); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// DeleteShiftTemplate removes a template.
func (q *queries) DeleteShiftTemplate(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM shift_templates WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete shift template %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shift template %d: %w", id, generic.ErrEntityNotFound)
	}
	return nil
}
