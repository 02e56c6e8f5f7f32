package timeoff_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedulehq/schedule-engine/timeoff"
)

func TestBuildBatch_OneEntryPerDay(t *testing.T) {
	req := timeoff.Request{EmployeeID: alice, Type: timeoff.TypePTO, Start: date(2024, time.February, 27), Days: 4, HoursPerDay: 6}

	entries := timeoff.BuildBatch(req, timeoff.DefaultRules(), "grp-1")
	require.Len(t, entries, 4)

	assert.Equal(t, date(2024, time.February, 29), entries[2].Date, "leap day included")
	assert.Equal(t, date(2024, time.March, 1), entries[3].Date)
	for _, e := range entries {
		assert.Equal(t, 6, e.Hours)
		assert.Equal(t, "grp-1", e.VacationGroupID)
		assert.True(t, e.IsAllDay)
	}
}

func TestBuildBatch_Grouping(t *testing.T) {
	rules := timeoff.DefaultRules()

	single := timeoff.BuildBatch(timeoff.Request{Type: timeoff.TypePTO, Start: date(2024, time.May, 1), Days: 1}, rules, "g")
	assert.Empty(t, single[0].VacationGroupID)

	vac := timeoff.BuildBatch(timeoff.Request{Type: timeoff.TypeVacation, Start: date(2024, time.May, 1), Days: 1}, rules, "g")
	assert.Equal(t, "g", vac[0].VacationGroupID)
}

func TestBuildBatch_VacationIgnoresHoursPerDay(t *testing.T) {
	entries := timeoff.BuildBatch(timeoff.Request{
		Type: timeoff.TypeVacation, Start: date(2024, time.May, 1), Days: 2, HoursPerDay: 4,
	}, timeoff.DefaultRules(), "g")
	assert.Equal(t, timeoff.VacationHoursPerDay, entries[0].Hours)
}

func TestRequestValidate(t *testing.T) {
	base := timeoff.Request{EmployeeID: alice, Type: timeoff.TypeRequested, Start: date(2024, time.May, 1), Days: 1}

	tests := []struct {
		name    string
		mutate  func(r *timeoff.Request)
		wantErr bool
	}{
		{"partial day", func(r *timeoff.Request) { r.StartTime, r.EndTime = "08:30", "12:00" }, false},
		{"all day", func(r *timeoff.Request) { r.IsAllDay = true }, false},
		{"missing times", func(r *timeoff.Request) {}, true},
		{"end before start", func(r *timeoff.Request) { r.StartTime, r.EndTime = "12:00", "08:00" }, true},
		{"bad clock", func(r *timeoff.Request) { r.StartTime, r.EndTime = "25:00", "26:00" }, true},
		{"multi-day requested", func(r *timeoff.Request) { r.IsAllDay, r.Days = true, 2 }, true},
		{"too many hours", func(r *timeoff.Request) { r.IsAllDay, r.HoursPerDay = true, 25 }, true},
		{"year-long vacation", func(r *timeoff.Request) { r.Type, r.Days = timeoff.TypeVacation, timeoff.MaxRequestDays }, false},
		{"longer than a year", func(r *timeoff.Request) { r.Type, r.Days = timeoff.TypePTO, timeoff.MaxRequestDays + 1 }, true},
		{"overflowing days", func(r *timeoff.Request) { r.Type, r.Days = timeoff.TypePTO, 1 << 61 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVacationWeeks(t *testing.T) {
	assert.Equal(t, 0, timeoff.VacationWeeks(0))
	assert.Equal(t, 1, timeoff.VacationWeeks(1))
	assert.Equal(t, 1, timeoff.VacationWeeks(7))
	assert.Equal(t, 2, timeoff.VacationWeeks(8))
	assert.Equal(t, 3, timeoff.VacationWeeks(15))
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]timeoff.Type{
		"pto": timeoff.TypePTO, "Vacation": timeoff.TypeVacation, "vac": timeoff.TypeVacation,
		"Requested": timeoff.TypeRequested, "sick": timeoff.TypeRequested,
	} {
		got, err := timeoff.ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := timeoff.ParseType("holiday")
	assert.Error(t, err)
	assert.Equal(t, "Requested", timeoff.TypeRequested.Label())
}
