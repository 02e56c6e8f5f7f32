package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Case-only duplicates cannot be created through SaveJobCode, so these tests
// seed them the way older databases hold them.
func seedDuplicateCodes(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	for _, stmt := range []string{
		`INSERT INTO job_code_settings (code, has_pto, sort_order) VALUES ('crew', 1, 1)`,
		`INSERT INTO job_code_settings (code, has_pto, sort_order) VALUES ('Manager', 0, 2)`,
		`INSERT INTO job_code_settings (code, has_pto, sort_order) VALUES ('Crew', 1, 3)`,
		`INSERT INTO job_code_settings (code, has_pto, sort_order) VALUES ('CREW', 0, 4)`,
		`INSERT INTO employees (name, job_code) VALUES ('A', 'crew')`,
		`INSERT INTO employees (name, job_code) VALUES ('B', 'Crew')`,
		`INSERT INTO employees (name, job_code) VALUES ('C', 'Crew')`,
		`INSERT INTO employees (name, job_code) VALUES ('D', 'Manager')`,
		`INSERT INTO shift_templates (name, job_code, start_time, end_time) VALUES ('Open', 'CREW', '06:00', '14:00')`,
	} {
		_, err := s.sqlDB.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}
}

func TestNormalizeJobCodes_MostReferencesWins(t *testing.T) {
	// GIVEN: "crew" (1 employee), "Crew" (2 employees), "CREW" (1 template)
	// WHEN: Normalizing
	// THEN: "Crew" is canonical; every reference uses it; one row remains

	store, err := New(":memory:")
	require.NoError(t, err)
	defer store.Close()
	seedDuplicateCodes(t, store)
	ctx := context.Background()

	merges, err := store.NormalizeJobCodes(ctx)
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, "Crew", merges[0].Canonical.Display())
	assert.Len(t, merges[0].Losers, 2)

	codes, err := store.ListJobCodes(ctx)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "Manager", codes[0].Code.Display())
	assert.Equal(t, "Crew", codes[1].Code.Display())

	employees, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	for _, e := range employees {
		if e.Name != "D" {
			assert.Equal(t, "Crew", e.JobCode, e.Name)
		}
	}

	templates, err := store.ListShiftTemplates(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Crew", templates[0].JobCode)

	again, err := store.NormalizeJobCodes(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestNormalizeJobCodes_TieGoesToFirstInserted(t *testing.T) {
	store, err := New(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	for _, stmt := range []string{
		`INSERT INTO job_code_settings (code) VALUES ('cook')`,
		`INSERT INTO job_code_settings (code) VALUES ('Cook')`,
		`INSERT INTO employees (name, job_code) VALUES ('A', 'cook')`,
		`INSERT INTO employees (name, job_code) VALUES ('B', 'Cook')`,
	} {
		_, err := store.sqlDB.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	merges, err := store.NormalizeJobCodes(ctx)
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, "cook", merges[0].Canonical.Display())
}
