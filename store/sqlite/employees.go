package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/timeoff"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

const employeeColumns = `id, name, job_code, vacation_weeks_allowed, vacation_weeks_used`

// SaveEmployee inserts an employee when ID is zero, otherwise inserts or
// updates the row with that ID. It returns the employee's ID.
func (q *queries) SaveEmployee(ctx context.Context, emp timeoff.Employee) (timeoff.EmployeeID, error) {
	emp.Name = strings.TrimSpace(emp.Name)
	if emp.Name == "" {
		return 0, fmt.Errorf("%w: employee name is required", generic.ErrInvalidRequest)
	}
	if emp.VacationWeeksAllowed < 0 || emp.VacationWeeksUsed < 0 {
		return 0, fmt.Errorf("%w: vacation weeks must not be negative", generic.ErrInvalidRequest)
	}
	jobCode := strings.TrimSpace(emp.JobCode)

	if emp.ID == 0 {
		res, err := q.db.ExecContext(ctx, `
			INSERT INTO employees (name, job_code, vacation_weeks_allowed, vacation_weeks_used)
			VALUES (?, ?, ?, ?)`,
			emp.Name, jobCode, emp.VacationWeeksAllowed, emp.VacationWeeksUsed)
		if err != nil {
			return 0, fmt.Errorf("failed to insert employee: %w", err)
		}
		id, err := res.LastInsertId()
		return timeoff.EmployeeID(id), err
	}

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, job_code, vacation_weeks_allowed, vacation_weeks_used)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			job_code = excluded.job_code,
			vacation_weeks_allowed = excluded.vacation_weeks_allowed,
			vacation_weeks_used = excluded.vacation_weeks_used`,
		emp.ID, emp.Name, jobCode, emp.VacationWeeksAllowed, emp.VacationWeeksUsed)
	if err != nil {
		return 0, fmt.Errorf("failed to save employee %d: %w", emp.ID, err)
	}
	return emp.ID, nil
}

// GetEmployee retrieves an employee by ID.
func (q *queries) GetEmployee(ctx context.Context, id timeoff.EmployeeID) (*timeoff.Employee, error) {
	var emp timeoff.Employee
	err := q.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = ?", id,
	).Scan(&emp.ID, &emp.Name, &emp.JobCode, &emp.VacationWeeksAllowed, &emp.VacationWeeksUsed)
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (q *queries) ListEmployees(ctx context.Context) ([]timeoff.Employee, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+employeeColumns+" FROM employees ORDER BY name COLLATE NOCASE, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []timeoff.Employee
	for rows.Next() {
		var emp timeoff.Employee
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.JobCode, &emp.VacationWeeksAllowed, &emp.VacationWeeksUsed); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// AdjustVacationWeeksUsed adds delta to the employee's used weeks, never
// going below zero.
func (q *queries) AdjustVacationWeeksUsed(ctx context.Context, id timeoff.EmployeeID, delta int) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE employees SET vacation_weeks_used = MAX(0, vacation_weeks_used + ?)
		WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust vacation weeks for %d: %w", id, err)
	}
	return nil
}

// DeleteEmployee removes an employee together with their time off and PTO
// history.
func (s *Store) DeleteEmployee(ctx context.Context, id timeoff.EmployeeID) error {
	return s.inTx(ctx, func(q *queries) error {
		if _, err := q.db.ExecContext(ctx, "DELETE FROM time_off WHERE employee_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete time off: %w", err)
		}
		if _, err := q.db.ExecContext(ctx, "DELETE FROM pto_history WHERE employee_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete pto history: %w", err)
		}
		res, err := q.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete employee: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("employee %d: %w", id, generic.ErrEntityNotFound)
		}
		return nil
	})
}
