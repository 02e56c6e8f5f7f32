package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedulehq/schedule-engine/generic"
)

func TestParseDate(t *testing.T) {
	d, err := generic.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, generic.NewDate(2024, time.February, 29), d)
	assert.Equal(t, time.Thursday, d.Weekday())

	_, err = generic.ParseDate("02/29/2024")
	assert.Error(t, err)
}

func TestDateArithmetic(t *testing.T) {
	d := generic.NewDate(2024, time.December, 30)
	assert.Equal(t, "2025-01-01", d.AddDays(2).String())
	assert.Equal(t, "2024-12-29", d.AddDays(-1).String())
	assert.Equal(t, 2, generic.DaysBetween(d, d.AddDays(2)))
	assert.True(t, d.BeforeOrEqual(d))
	assert.True(t, d.AfterOrEqual(d))
	assert.False(t, d.After(d))
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	d := generic.DateOf(time.Date(2024, time.July, 4, 23, 59, 0, 0, time.Local))
	assert.Equal(t, generic.NewDate(2024, time.July, 4), d)
}

func TestParseClock(t *testing.T) {
	m, err := generic.ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)
	assert.Equal(t, "09:30", generic.FormatClock(m))

	for _, bad := range []string{"", "9", "24:00", "12:60", "12:5", "ab:cd"} {
		_, err := generic.ParseClock(bad)
		assert.Error(t, err, bad)
	}
}
