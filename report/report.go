/*
report.go - XLSX export of time off and PTO balances

SHEETS:
  Time Off      one row per stored day: employee, date, type label, hours,
                all day, start, end, vacation group
  PTO Balances  one row per employee: trimester, entitlement, carryover,
                used, remaining

Rows keep the order they are given in. Employees missing from the name map
are written as "#<id>".
*/
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/timeoff"
)

const (
	SheetTimeOff  = "Time Off"
	SheetBalances = "PTO Balances"
)

var (
	timeOffHeader = []any{"Employee", "Date", "Type", "Hours", "All Day", "Start", "End", "Vacation Group"}
	balanceHeader = []any{"Employee", "Trimester", "Eligible", "Entitlement", "Carryover", "Used", "Remaining"}
)

// Workbook is everything one export contains.
type Workbook struct {
	Employees []timeoff.Employee
	Entries   []timeoff.Entry
	Balances  []timeoff.PTOBalance
}

// WriteTimeOff writes a workbook holding only the Time Off sheet.
func WriteTimeOff(w io.Writer, entries []timeoff.Entry, employees []timeoff.Employee) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTimeOff); err != nil {
		return err
	}
	if err := writeTimeOff(f, entries, names(employees)); err != nil {
		return err
	}
	return f.Write(w)
}

// WriteWorkbook writes both sheets.
func WriteWorkbook(w io.Writer, data Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTimeOff); err != nil {
		return err
	}
	byID := names(data.Employees)
	if err := writeTimeOff(f, data.Entries, byID); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetBalances); err != nil {
		return err
	}
	if err := writeBalances(f, data.Balances, byID); err != nil {
		return err
	}
	return f.Write(w)
}

func writeTimeOff(f *excelize.File, entries []timeoff.Entry, byID map[timeoff.EmployeeID]string) error {
	if err := writeHeader(f, SheetTimeOff, timeOffHeader); err != nil {
		return err
	}
	for i, e := range entries {
		row := []any{
			nameFor(byID, e.EmployeeID),
			e.Date.String(),
			e.Type.Label(),
			e.Hours,
			yesNo(e.IsAllDay),
			e.StartTime,
			e.EndTime,
			e.VacationGroupID,
		}
		if err := setRow(f, SheetTimeOff, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetTimeOff, "A", "A", 24)
}

func writeBalances(f *excelize.File, balances []timeoff.PTOBalance, byID map[timeoff.EmployeeID]string) error {
	if err := writeHeader(f, SheetBalances, balanceHeader); err != nil {
		return err
	}
	for i, b := range balances {
		row := []any{
			nameFor(byID, b.EmployeeID),
			generic.TrimesterLabel(b.Trimester),
			yesNo(b.Eligible),
			b.Entitlement,
			b.Carryover,
			b.Used,
			b.Remaining,
		}
		if err := setRow(f, SheetBalances, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetBalances, "A", "A", 24)
}

func writeHeader(f *excelize.File, sheet string, header []any) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func names(employees []timeoff.Employee) map[timeoff.EmployeeID]string {
	byID := make(map[timeoff.EmployeeID]string, len(employees))
	for _, e := range employees {
		byID[e.ID] = e.Name
	}
	return byID
}

func nameFor(byID map[timeoff.EmployeeID]string, id timeoff.EmployeeID) string {
	if name, ok := byID[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
