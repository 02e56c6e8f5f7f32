/*
Package jobcode models job codes and their per-code settings.

CASE HANDLING:
  Job codes are typed by managers ("Cashier", "cashier", "CASHIER") and stored
  with the casing they were entered in. Every comparison goes through Code,
  which keeps a lowercased key next to the display casing, so callers never
  lowercase strings themselves.

MERGING:
  Older databases can hold settings rows that differ only in case. PlanMerges
  picks one canonical row per key (the row referenced by the most employees
  and shift templates, ties broken by insertion order) and lists the rows to
  fold into it. The store applies the plan in one transaction.
*/
package jobcode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CODE - Case-insensitive identity, case-preserving display
// =============================================================================

type Code struct {
	key     string
	display string
}

// NewCode trims s and keeps its casing for display.
func NewCode(s string) Code {
	display := strings.TrimSpace(s)
	return Code{key: strings.ToLower(display), display: display}
}

func (c Code) Key() string          { return c.key }
func (c Code) Display() string      { return c.display }
func (c Code) String() string       { return c.display }
func (c Code) IsZero() bool         { return c.key == "" }
func (c Code) Equal(other Code) bool { return c.key == other.key }

// =============================================================================
// SETTINGS
// =============================================================================

// Settings holds per-code configuration. HasPTO gates PTO eligibility for
// every employee carrying the code.
type Settings struct {
	Code              Code
	HasPTO            bool
	DefaultDailyHours decimal.Decimal
	MaxHoursPerWeek   decimal.Decimal
	ColorHex          string
	SortOrder         int
}

const DefaultColorHex = "#4285F4"

var (
	defaultDailyHours = decimal.NewFromInt(8)
	defaultWeekHours  = decimal.NewFromInt(40)
)

// DefaultSettings is what a code without a settings row behaves like.
func DefaultSettings(code Code) Settings {
	return Settings{
		Code:              code,
		HasPTO:            true,
		DefaultDailyHours: defaultDailyHours,
		MaxHoursPerWeek:   defaultWeekHours,
		ColorHex:          DefaultColorHex,
	}
}

// Validate checks hour limits and color format.
func (s Settings) Validate() error {
	if s.Code.IsZero() {
		return fmt.Errorf("job code is required")
	}
	if s.DefaultDailyHours.IsNegative() || s.DefaultDailyHours.GreaterThan(decimal.NewFromInt(24)) {
		return fmt.Errorf("default daily hours must be between 0 and 24, got %s", s.DefaultDailyHours)
	}
	if s.MaxHoursPerWeek.IsNegative() {
		return fmt.Errorf("max hours per week must not be negative, got %s", s.MaxHoursPerWeek)
	}
	if s.ColorHex != "" && (len(s.ColorHex) != 7 || s.ColorHex[0] != '#') {
		return fmt.Errorf("color must look like #RRGGBB, got %q", s.ColorHex)
	}
	return nil
}

// WeeklyLimitExceeded reports whether scheduled hours pass MaxHoursPerWeek.
// A zero limit means unlimited.
func (s Settings) WeeklyLimitExceeded(hours decimal.Decimal) bool {
	if s.MaxHoursPerWeek.IsZero() {
		return false
	}
	return hours.GreaterThan(s.MaxHoursPerWeek)
}

// Lookup finds the settings for code, falling back to DefaultSettings.
func Lookup(all []Settings, code Code) Settings {
	for _, s := range all {
		if s.Code.Equal(code) {
			return s
		}
	}
	return DefaultSettings(code)
}

// =============================================================================
// CASE-DUPLICATE MERGING
// =============================================================================

// Row is a stored settings row with what the merge planner needs to rank it.
type Row struct {
	Settings    Settings
	InsertOrder int64 // rowid; lower was inserted first
	References  int   // employees + shift templates using this exact casing
}

// Merge folds Losers into Canonical.
type Merge struct {
	Canonical Code
	Losers    []Code
}

// PlanMerges returns one Merge per key that has more than one row, ordered by
// canonical key.
func PlanMerges(rows []Row) []Merge {
	byKey := make(map[string][]Row)
	for _, r := range rows {
		k := r.Settings.Code.Key()
		byKey[k] = append(byKey[k], r)
	}

	var merges []Merge
	for _, group := range byKey {
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].References != group[j].References {
				return group[i].References > group[j].References
			}
			return group[i].InsertOrder < group[j].InsertOrder
		})
		m := Merge{Canonical: group[0].Settings.Code}
		for _, r := range group[1:] {
			m.Losers = append(m.Losers, r.Settings.Code)
		}
		merges = append(merges, m)
	}

	sort.Slice(merges, func(i, j int) bool {
		return merges[i].Canonical.Key() < merges[j].Canonical.Key()
	})
	return merges
}
