package sqlite

import (
	"context"
	"fmt"
)

// migration is one schema step. Steps only add tables, columns and indexes,
// except the store hours conversion in version 8.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{1, "base schema", []string{
		`CREATE TABLE IF NOT EXISTS employees (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			job_code TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS time_off (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			employee_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			time_off_type TEXT NOT NULL,
			hours INTEGER NOT NULL DEFAULT 8
		)`,
		`CREATE INDEX IF NOT EXISTS idx_time_off_employee_date
			ON time_off(employee_id, date)`,
		`CREATE TABLE IF NOT EXISTS shift_templates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			job_code TEXT NOT NULL DEFAULT '',
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS shifts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			employee_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			label TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shifts_date ON shifts(date)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			pto_hours_per_trimester INTEGER NOT NULL DEFAULT 40,
			pto_hours_per_request INTEGER NOT NULL DEFAULT 8,
			max_carryover_hours INTEGER NOT NULL DEFAULT 8
		)`,
		`CREATE TABLE IF NOT EXISTS store_hours (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			open_time TEXT NOT NULL,
			close_time TEXT NOT NULL
		)`,
	}},
	{2, "vacation weeks", []string{
		`ALTER TABLE employees ADD COLUMN vacation_weeks_allowed INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE employees ADD COLUMN vacation_weeks_used INTEGER NOT NULL DEFAULT 0`,
	}},
	{3, "job code settings", []string{
		`CREATE TABLE IF NOT EXISTS job_code_settings (
			code TEXT PRIMARY KEY,
			has_pto INTEGER NOT NULL DEFAULT 1,
			default_daily_hours TEXT NOT NULL DEFAULT '8',
			max_hours_per_week TEXT NOT NULL DEFAULT '40',
			color_hex TEXT NOT NULL DEFAULT '#4285F4',
			sort_order INTEGER NOT NULL DEFAULT 0
		)`,
	}},
	{4, "vacation groups", []string{
		`ALTER TABLE time_off ADD COLUMN vacation_group_id TEXT`,
		`CREATE INDEX IF NOT EXISTS idx_time_off_group
			ON time_off(vacation_group_id) WHERE vacation_group_id IS NOT NULL`,
	}},
	{5, "pto history", []string{
		`CREATE TABLE IF NOT EXISTS pto_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			employee_id INTEGER NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			trimester_start TEXT NOT NULL,
			carryover_hours INTEGER NOT NULL DEFAULT 0,
			UNIQUE(employee_id, trimester_start)
		)`,
	}},
	{6, "partial-day time off", []string{
		`ALTER TABLE time_off ADD COLUMN is_all_day INTEGER NOT NULL DEFAULT 1`,
		`ALTER TABLE time_off ADD COLUMN start_time TEXT`,
		`ALTER TABLE time_off ADD COLUMN end_time TEXT`,
	}},
	{7, "overlap policy", []string{
		`ALTER TABLE settings ADD COLUMN block_overlaps INTEGER NOT NULL DEFAULT 0`,
	}},
	{8, "per-day store hours", []string{
		`CREATE TABLE store_hours_daily (
			weekday INTEGER PRIMARY KEY CHECK (weekday BETWEEN 0 AND 6),
			open_time TEXT NOT NULL,
			close_time TEXT NOT NULL,
			closed INTEGER NOT NULL DEFAULT 0
		)`,
		`INSERT INTO store_hours_daily (weekday, open_time, close_time)
			SELECT d.weekday, h.open_time, h.close_time
			FROM store_hours h,
			     (SELECT 0 AS weekday UNION ALL SELECT 1 UNION ALL SELECT 2 UNION ALL
			      SELECT 3 UNION ALL SELECT 4 UNION ALL SELECT 5 UNION ALL SELECT 6) d`,
		`DROP TABLE store_hours`,
		`ALTER TABLE store_hours_daily RENAME TO store_hours`,
	}},
	{9, "schedule templates", []string{
		`CREATE TABLE IF NOT EXISTS employee_weekly_templates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			employee_id INTEGER NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			weekday INTEGER NOT NULL,
			shift_template_id INTEGER,
			UNIQUE(employee_id, weekday)
		)`,
		`CREATE TABLE IF NOT EXISTS shift_runner_colors (
			label TEXT PRIMARY KEY,
			color_hex TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS job_code_groups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			job_codes TEXT NOT NULL DEFAULT ''
		)`,
	}},
}

// SchemaVersion is the version a fully migrated database reports.
func SchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Version returns the database's current schema version.
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	err := s.sqlDB.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v)
	return v, err
}

// migrate applies pending migrations in order, each in its own transaction.
func (s *Store) migrate(ctx context.Context) error {
	return s.migrateTo(ctx, SchemaVersion())
}

func (s *Store) migrateTo(ctx context.Context, target int) error {
	current, err := s.Version(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current || m.version > target {
			continue
		}
		err := s.inTx(ctx, func(q *queries) error {
			for _, stmt := range m.stmts {
				if _, err := q.db.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			_, err := q.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version))
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		s.logger.WithField("version", m.version).Debugf("applied migration: %s", m.name)
	}
	return nil
}
