package cloudsync_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schedulehq/schedule-engine/cloudsync"
	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/store/sqlite"
	"github.com/schedulehq/schedule-engine/timeoff"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// seed writes two employees and a three-day vacation group plus one
// partial-day entry.
func seed(t *testing.T, store *sqlite.Store) {
	t.Helper()
	ctx := context.Background()

	alice, err := store.SaveEmployee(ctx, timeoff.Employee{Name: "Alice", JobCode: "Crew", VacationWeeksAllowed: 2, VacationWeeksUsed: 1})
	require.NoError(t, err)
	_, err = store.SaveEmployee(ctx, timeoff.Employee{Name: "Bob", JobCode: "Manager"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := store.InsertTimeOff(ctx, timeoff.Entry{
			EmployeeID:      alice,
			Date:            generic.NewDate(2024, time.July, 1+i),
			Type:            timeoff.TypeVacation,
			Hours:           8,
			VacationGroupID: "grp-1",
			IsAllDay:        true,
		})
		require.NoError(t, err)
	}
	_, err = store.InsertTimeOff(ctx, timeoff.Entry{
		EmployeeID: alice,
		Date:       generic.NewDate(2024, time.July, 9),
		Type:       timeoff.TypeRequested,
		StartTime:  "09:00",
		EndTime:    "12:00",
	})
	require.NoError(t, err)
}

// =============================================================================
// DOCUMENT IDS
// =============================================================================

func TestTimeOffDocID(t *testing.T) {
	id := cloudsync.TimeOffDocID(3, 42)
	assert.Equal(t, "3_42", id)

	emp, entry, err := cloudsync.ParseTimeOffDocID(id)
	require.NoError(t, err)
	assert.Equal(t, timeoff.EmployeeID(3), emp)
	assert.Equal(t, timeoff.EntryID(42), entry)

	for _, bad := range []string{"", "42", "a_1", "1_b"} {
		_, _, err := cloudsync.ParseTimeOffDocID(bad)
		assert.ErrorIs(t, err, generic.ErrInvalidRequest, bad)
	}
}

func TestTimeOffDoc_RejectsUnknownType(t *testing.T) {
	doc := cloudsync.TimeOffDoc{ID: 1, EmployeeID: 1, Date: "2024-07-01", TimeOffType: "holiday"}
	_, err := doc.Entry()
	assert.ErrorIs(t, err, generic.ErrInvalidRequest)

	doc.TimeOffType = "pto"
	doc.Date = "07/01/2024"
	_, err = doc.Entry()
	assert.ErrorIs(t, err, generic.ErrInvalidRequest)
}

// =============================================================================
// UPLOAD
// =============================================================================

func TestUpload_Batches(t *testing.T) {
	store := newStore(t)
	seed(t, store)
	mirror := cloudsync.NewMemoryMirror()

	summary, err := cloudsync.NewSyncer(store, mirror, cloudsync.Options{BatchSize: 4}).Upload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, cloudsync.Summary{Employees: 2, TimeOff: 4, Batches: 2}, summary)
	assert.Equal(t, []int{4, 2}, mirror.CommitSizes())

	docs, err := mirror.List(context.Background(), cloudsync.CollectionTimeOff)
	require.NoError(t, err)
	require.Len(t, docs, 4)
	assert.Equal(t, "grp-1", docs[0].TimeOff.VacationGroupID)
	assert.Equal(t, "vac", docs[0].TimeOff.TimeOffType)
}

func TestUpload_StopsAtFailedBatch(t *testing.T) {
	store := newStore(t)
	seed(t, store)
	mirror := cloudsync.NewMemoryMirror()
	mirror.FailOnCommit = 2

	summary, err := cloudsync.NewSyncer(store, mirror, cloudsync.Options{BatchSize: 2}).Upload(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1, summary.Batches)
	assert.Equal(t, 2, summary.Employees)
	assert.Equal(t, 0, summary.TimeOff)
	assert.Equal(t, []int{2, 2}, mirror.CommitSizes(), "no batch after the failure")

	employees, err := mirror.List(context.Background(), cloudsync.CollectionEmployees)
	require.NoError(t, err)
	assert.Len(t, employees, 2, "earlier batch stays written")
}

func TestUpload_CanceledContext(t *testing.T) {
	store := newStore(t)
	seed(t, store)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cloudsync.NewSyncer(store, cloudsync.NewMemoryMirror(), cloudsync.Options{}).Upload(ctx)
	assert.Error(t, err)
}

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestFileMirror_RoundTrip(t *testing.T) {
	ctx := context.Background()
	source := newStore(t)
	seed(t, source)
	mirror := cloudsync.NewFileMirror(filepath.Join(t.TempDir(), "backup", "schedule.cbor.zst"))

	_, err := cloudsync.NewSyncer(source, mirror, cloudsync.Options{BatchSize: 3, Timeout: time.Second}).Upload(ctx)
	require.NoError(t, err)

	// A fresh mirror on the same path reads what was written.
	reopened := cloudsync.NewFileMirror(mirror.Path())
	target := newStore(t)
	summary, err := cloudsync.NewSyncer(target, reopened, cloudsync.Options{}).Download(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Employees)
	assert.Equal(t, 4, summary.TimeOff)
	assert.Zero(t, summary.Skipped)

	want, err := source.AllTimeOff(ctx)
	require.NoError(t, err)
	got, err := target.AllTimeOff(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	emps, err := target.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, emps, 2)
	assert.Equal(t, "Alice", emps[0].Name)
	assert.Equal(t, 1, emps[0].VacationWeeksUsed)
}

func TestFileMirror_EmptyFile(t *testing.T) {
	mirror := cloudsync.NewFileMirror(filepath.Join(t.TempDir(), "none.cbor.zst"))
	docs, err := mirror.List(context.Background(), cloudsync.CollectionEmployees)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDownload_SkipsInvalidDocuments(t *testing.T) {
	ctx := context.Background()
	mirror := cloudsync.NewMemoryMirror()
	require.NoError(t, mirror.Commit(ctx, []cloudsync.Document{
		cloudsync.EmployeeDocument(timeoff.Employee{ID: 5, Name: "Cara", JobCode: "Crew"}),
		{Collection: cloudsync.CollectionEmployees, ID: "6", Employee: &cloudsync.EmployeeDoc{ID: 6, Name: " "}},
		{Collection: cloudsync.CollectionTimeOff, ID: "5_1", TimeOff: &cloudsync.TimeOffDoc{
			ID: 1, EmployeeID: 5, Date: "2024-02-01", TimeOffType: "pto", Hours: 8, IsAllDay: true,
		}},
		{Collection: cloudsync.CollectionTimeOff, ID: "5_2", TimeOff: &cloudsync.TimeOffDoc{
			ID: 2, EmployeeID: 5, Date: "2024-02-02", TimeOffType: "holiday", Hours: 8,
		}},
		{Collection: cloudsync.CollectionTimeOff, ID: "5_3"},
	}))

	store := newStore(t)
	summary, err := cloudsync.NewSyncer(store, mirror, cloudsync.Options{}).Download(ctx)
	require.NoError(t, err)
	assert.Equal(t, cloudsync.Summary{Employees: 1, TimeOff: 1, Skipped: 3}, summary)

	emp, err := store.GetEmployee(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, emp)
	assert.Equal(t, "Cara", emp.Name)
}
