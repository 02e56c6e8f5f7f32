package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/report"
	"github.com/schedulehq/schedule-engine/timeoff"
)

var employees = []timeoff.Employee{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}

var entries = []timeoff.Entry{
	{ID: 1, EmployeeID: 1, Date: generic.NewDate(2024, time.July, 1), Type: timeoff.TypeVacation, Hours: 8, IsAllDay: true, VacationGroupID: "grp-1"},
	{ID: 2, EmployeeID: 9, Date: generic.NewDate(2024, time.July, 2), Type: timeoff.TypeRequested, StartTime: "09:00", EndTime: "12:00"},
}

func open(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteTimeOff(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteTimeOff(&buf, entries, employees))

	f := open(t, &buf)
	assert.Equal(t, []string{report.SheetTimeOff}, f.GetSheetList())

	rows, err := f.GetRows(report.SheetTimeOff)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Employee", rows[0][0])
	assert.Equal(t, []string{"Alice", "2024-07-01", "Vacation", "8", "Yes", "", "", "grp-1"}, rows[1])
	assert.Equal(t, []string{"#9", "2024-07-02", "Requested", "0", "No", "09:00", "12:00"}, rows[2])
}

func TestWriteWorkbook_Balances(t *testing.T) {
	trimester := generic.TrimesterFor(generic.NewDate(2024, time.May, 15))
	balances := []timeoff.PTOBalance{
		{EmployeeID: 1, Trimester: trimester, Eligible: true, Entitlement: 48, Carryover: 8, Used: 16, Remaining: 32},
		{EmployeeID: 2, Trimester: trimester},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteWorkbook(&buf, report.Workbook{
		Employees: employees,
		Entries:   entries,
		Balances:  balances,
	}))

	f := open(t, &buf)
	assert.Equal(t, []string{report.SheetTimeOff, report.SheetBalances}, f.GetSheetList())

	rows, err := f.GetRows(report.SheetBalances)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Alice", "2024 T2", "Yes", "48", "8", "16", "32"}, rows[1])
	assert.Equal(t, []string{"Bob", "2024 T2", "No", "0", "0", "0", "0"}, rows[2])
}
