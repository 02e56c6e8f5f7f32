package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/timeoff"
)

// =============================================================================
// TIME OFF
// =============================================================================

const timeOffColumns = `id, employee_id, date, time_off_type, hours,
	vacation_group_id, is_all_day, start_time, end_time`

// TimeOffInRange returns the employee's entries dated within [from, to].
func (q *queries) TimeOffInRange(ctx context.Context, id timeoff.EmployeeID, from, to generic.Date) ([]timeoff.Entry, error) {
	return q.queryTimeOff(ctx, `
		SELECT `+timeOffColumns+` FROM time_off
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date, id`,
		id, from.String(), to.String())
}

// GetTimeOff retrieves one entry by ID.
func (q *queries) GetTimeOff(ctx context.Context, id timeoff.EntryID) (*timeoff.Entry, error) {
	entries, err := q.queryTimeOff(ctx,
		"SELECT "+timeOffColumns+" FROM time_off WHERE id = ?", id)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

// TimeOffByGroup returns every entry sharing groupID.
func (q *queries) TimeOffByGroup(ctx context.Context, groupID string) ([]timeoff.Entry, error) {
	if groupID == "" {
		return nil, nil
	}
	return q.queryTimeOff(ctx, `
		SELECT `+timeOffColumns+` FROM time_off
		WHERE vacation_group_id = ?
		ORDER BY date, id`, groupID)
}

// AllTimeOff returns every entry, ordered by employee then date.
func (q *queries) AllTimeOff(ctx context.Context) ([]timeoff.Entry, error) {
	return q.queryTimeOff(ctx,
		"SELECT "+timeOffColumns+" FROM time_off ORDER BY employee_id, date, id")
}

// TimeOffBetween returns every employee's entries dated within [from, to].
func (q *queries) TimeOffBetween(ctx context.Context, from, to generic.Date) ([]timeoff.Entry, error) {
	return q.queryTimeOff(ctx, `
		SELECT `+timeOffColumns+` FROM time_off
		WHERE date >= ? AND date <= ?
		ORDER BY date, employee_id, id`, from.String(), to.String())
}

// InsertTimeOff writes a new entry and returns its ID. No rule checks.
func (q *queries) InsertTimeOff(ctx context.Context, e timeoff.Entry) (timeoff.EntryID, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO time_off
		(employee_id, date, time_off_type, hours, vacation_group_id, is_all_day, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EmployeeID, e.Date.String(), string(e.Type), e.Hours,
		nullString(e.VacationGroupID), boolInt(e.IsAllDay),
		nullString(e.StartTime), nullString(e.EndTime))
	if err != nil {
		return 0, fmt.Errorf("failed to insert time off: %w", err)
	}
	id, err := res.LastInsertId()
	return timeoff.EntryID(id), err
}

// UpsertTimeOff writes e under its own ID, replacing any existing row.
func (q *queries) UpsertTimeOff(ctx context.Context, e timeoff.Entry) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO time_off
		(id, employee_id, date, time_off_type, hours, vacation_group_id, is_all_day, start_time, end_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			date = excluded.date,
			time_off_type = excluded.time_off_type,
			hours = excluded.hours,
			vacation_group_id = excluded.vacation_group_id,
			is_all_day = excluded.is_all_day,
			start_time = excluded.start_time,
			end_time = excluded.end_time`,
		e.ID, e.EmployeeID, e.Date.String(), string(e.Type), e.Hours,
		nullString(e.VacationGroupID), boolInt(e.IsAllDay),
		nullString(e.StartTime), nullString(e.EndTime))
	if err != nil {
		return fmt.Errorf("failed to upsert time off %d: %w", e.ID, err)
	}
	return nil
}

// DeleteTimeOff removes one entry. Group cascades are the caller's job.
func (q *queries) DeleteTimeOff(ctx context.Context, id timeoff.EntryID) error {
	_, err := q.db.ExecContext(ctx, "DELETE FROM time_off WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete time off %d: %w", id, err)
	}
	return nil
}

func (q *queries) queryTimeOff(ctx context.Context, query string, args ...any) ([]timeoff.Entry, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time off: %w", err)
	}
	defer rows.Close()

	var entries []timeoff.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(rows *sql.Rows) (timeoff.Entry, error) {
	var (
		e                         timeoff.Entry
		date, typ                 string
		group, startTime, endTime sql.NullString
		allDay                    int
	)
	if err := rows.Scan(&e.ID, &e.EmployeeID, &date, &typ, &e.Hours,
		&group, &allDay, &startTime, &endTime); err != nil {
		return timeoff.Entry{}, err
	}

	d, err := generic.ParseDate(date)
	if err != nil {
		return timeoff.Entry{}, fmt.Errorf("time off %d: %w", e.ID, err)
	}
	e.Date = d
	e.Type = timeoff.Type(typ)
	e.VacationGroupID = group.String
	e.IsAllDay = allDay != 0
	e.StartTime = startTime.String
	e.EndTime = endTime.String
	return e, nil
}
