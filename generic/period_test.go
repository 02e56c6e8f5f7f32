package generic_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedulehq/schedule-engine/generic"
)

func TestTrimesterFor_Boundaries(t *testing.T) {
	tests := []struct {
		day        string
		start, end string
		index      int
	}{
		{"2024-01-01", "2024-01-01", "2024-04-30", 1},
		{"2024-04-30", "2024-01-01", "2024-04-30", 1},
		{"2024-05-01", "2024-05-01", "2024-08-31", 2},
		{"2024-08-31", "2024-05-01", "2024-08-31", 2},
		{"2024-09-01", "2024-09-01", "2024-12-31", 3},
		{"2024-12-31", "2024-09-01", "2024-12-31", 3},
	}
	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			d := generic.MustParseDate(tt.day)
			p := generic.TrimesterFor(d)
			assert.Equal(t, tt.start, p.Start.String())
			assert.Equal(t, tt.end, p.End.String())
			assert.Equal(t, tt.index, generic.TrimesterIndex(d))
			assert.True(t, p.Contains(d))
		})
	}
}

func TestTrimesters_NextAndPrevious(t *testing.T) {
	jan := generic.TrimesterFor(generic.NewDate(2024, time.February, 10))

	prev := generic.Trimesters.Previous(jan)
	assert.Equal(t, "2023-09-01", prev.Start.String())
	assert.Equal(t, "2023-12-31", prev.End.String())

	next := generic.Trimesters.Next(jan)
	assert.Equal(t, "2024-05-01", next.Start.String())

	wrap := generic.Trimesters.Next(generic.Trimesters.Next(next))
	assert.Equal(t, "2025-01-01", wrap.Start.String())
}

func TestCalendarYearPeriod(t *testing.T) {
	pc := generic.PeriodConfig{Type: generic.PeriodCalendarYear}
	p := pc.PeriodFor(generic.NewDate(2024, time.June, 15))
	assert.Equal(t, "2024-01-01", p.Start.String())
	assert.Equal(t, "2024-12-31", p.End.String())
	assert.Len(t, p.Days(), 366)
}

func TestPeriodValidate(t *testing.T) {
	ok := generic.Period{Start: generic.MustParseDate("2024-03-01"), End: generic.MustParseDate("2024-03-01")}
	require.NoError(t, ok.Validate())

	bad := generic.Period{Start: generic.MustParseDate("2024-03-02"), End: generic.MustParseDate("2024-03-01")}
	assert.True(t, errors.Is(bad.Validate(), generic.ErrInvalidPeriod))
}

func TestTrimesterLabel(t *testing.T) {
	p := generic.TrimesterFor(generic.MustParseDate("2024-07-04"))
	assert.Equal(t, "2024 T2", generic.TrimesterLabel(p))
}
