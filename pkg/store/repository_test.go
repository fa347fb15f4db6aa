package store_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/strata/internal/roster"
	"github.com/mesh-intelligence/strata/pkg/store"
	"github.com/mesh-intelligence/strata/pkg/types"
)

// fakeClock is a controllable audit timestamp source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newFixture(t *testing.T) (*roster.Store, *sql.DB, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)}

	db, err := store.Open(types.Config{
		Backend: types.BackendSQLite,
		DSN:     "file:" + filepath.Join(t.TempDir(), "roster.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, roster.Migrate(context.Background(), db))

	s, err := roster.New(store.MustDialect(types.BackendSQLite),
		[]store.Option[roster.Team]{store.WithClock[roster.Team](clock.Now)},
		[]store.Option[roster.Task]{store.WithClock[roster.Task](clock.Now)},
	)
	require.NoError(t, err)
	return s, db, clock
}

func TestCreateAssignsIdentityAndStamps(t *testing.T) {
	s, db, clock := newFixture(t)
	ctx := context.Background()

	team, err := s.Teams.Create(ctx, db, map[string]any{
		"name":        "Alpha Team",
		"description": "first responders",
		"creator_id":  "user-1",
	})
	require.NoError(t, err)

	require.NotEmpty(t, team.ID)
	require.True(t, team.CreatedAt.Equal(clock.Now()), "CreatedAt = %v, want %v", team.CreatedAt, clock.Now())
	require.True(t, team.UpdatedAt.Equal(team.CreatedAt), "a new record gets matching timestamps")
	require.True(t, team.IsActive, "soft-deletable records come up active")
	require.Equal(t, "user-1", team.CreatorID)
}

func TestCreateIgnoresUnknownKeys(t *testing.T) {
	s, db, _ := newFixture(t)

	team, err := s.Teams.Create(context.Background(), db, map[string]any{
		"name":  "Alpha Team",
		"bogus": 42,
	})
	require.NoError(t, err)
	require.Equal(t, "Alpha Team", team.Name)
}

func TestCreateExplicitInactive(t *testing.T) {
	s, db, _ := newFixture(t)

	team, err := s.Teams.Create(context.Background(), db, map[string]any{
		"name":      "Ghost Team",
		"is_active": false,
	})
	require.NoError(t, err)
	require.False(t, team.IsActive)
}

func TestUpdateAdvancesUpdatedAtOnly(t *testing.T) {
	s, db, clock := newFixture(t)
	ctx := context.Background()

	team, err := s.Teams.Create(ctx, db, map[string]any{"name": "Alpha Team"})
	require.NoError(t, err)
	created := team.CreatedAt
	id := team.ID

	clock.advance(time.Minute)
	require.NoError(t, s.Teams.Update(ctx, db, team, map[string]any{"description": "renamed"}))

	require.Equal(t, id, team.ID)
	require.Equal(t, "renamed", team.Description)
	require.True(t, team.CreatedAt.Equal(created), "CreatedAt must not move on update")
	require.True(t, team.UpdatedAt.Equal(created.Add(time.Minute)))
}

func TestUpdateUnknownFieldPanics(t *testing.T) {
	s, db, _ := newFixture(t)
	ctx := context.Background()

	team, err := s.Teams.Create(ctx, db, map[string]any{"name": "Alpha Team"})
	require.NoError(t, err)

	require.Panics(t, func() {
		_ = s.Teams.Update(ctx, db, team, map[string]any{"descriptoin": "typo"})
	})
}

func TestDuplicateNameIsValidationError(t *testing.T) {
	s, db, _ := newFixture(t)
	ctx := context.Background()

	_, err := s.Teams.Create(ctx, db, map[string]any{"name": "Alpha Team"})
	require.NoError(t, err)

	_, err = s.Teams.Create(ctx, db, map[string]any{"name": "Alpha Team"})
	require.Error(t, err)
	require.True(t, types.IsValidation(err), "got %v", err)

	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, types.ConstraintUnique, verr.Kind)
	require.Equal(t, []string{"name"}, verr.Columns)
	require.Equal(t, "Team", verr.Model)
}

func TestFailedInsertLeavesRecordRetryable(t *testing.T) {
	s, db, _ := newFixture(t)
	ctx := context.Background()

	_, err := s.Teams.Create(ctx, db, map[string]any{"name": "Alpha Team"})
	require.NoError(t, err)

	dup := &roster.Team{Name: "Alpha Team"}
	err = s.Teams.Save(ctx, db, dup)
	require.True(t, types.IsValidation(err), "got %v", err)
	require.Empty(t, dup.ID, "failed insert must not leave a store-assigned id on the record")
	require.True(t, dup.CreatedAt.IsZero(), "failed insert must not stamp CreatedAt")
	require.True(t, dup.UpdatedAt.IsZero(), "failed insert must not stamp UpdatedAt")

	// Fixing the conflicting field makes the same record saveable.
	dup.Name = "Alpha Prime"
	require.NoError(t, s.Teams.Save(ctx, db, dup))
	require.NotEmpty(t, dup.ID)
	require.True(t, dup.UpdatedAt.Equal(dup.CreatedAt))
}

func TestFailedUpdateKeepsStoredTimestamps(t *testing.T) {
	s, db, clock := newFixture(t)
	ctx := context.Background()

	_, err := s.Teams.Create(ctx, db, map[string]any{"name": "Alpha Team"})
	require.NoError(t, err)
	team, err := s.Teams.Create(ctx, db, map[string]any{"name": "Beta Squad"})
	require.NoError(t, err)
	stamped := team.UpdatedAt

	clock.advance(time.Minute)
	team.Name = "Alpha Team"
	err = s.Teams.Save(ctx, db, team)
	require.True(t, types.IsValidation(err), "got %v", err)
	require.True(t, team.UpdatedAt.Equal(stamped), "failed update must not advance UpdatedAt")
}

func TestDanglingTeamIsIntegrityError(t *testing.T) {
	s, db, _ := newFixture(t)

	_, err := s.Tasks.Create(context.Background(), db, map[string]any{
		"title":   "orphan work",
		"status":  "open",
		"team_id": "no-such-team",
	})
	require.Error(t, err)
	require.True(t, types.IsIntegrity(err), "got %v", err)
}

func TestFilterPage(t *testing.T) {
	s, db, _ := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := s.Tasks.Create(ctx, db, map[string]any{
			"title":  fmt.Sprintf("task %02d", i),
			"status": "open",
		})
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := s.Tasks.Create(ctx, db, map[string]any{
			"title":  fmt.Sprintf("done %02d", i),
			"status": "done",
		})
		require.NoError(t, err)
	}

	q := store.Query{Filters: types.Filters{"status": "open"}}

	items, total, err := s.Tasks.FilterPage(ctx, db, q, types.Pagination{Limit: 5})
	require.NoError(t, err)
	require.Len(t, items, 5)
	require.Equal(t, 12, total, "total counts every match, not the page")

	items, total, err = s.Tasks.FilterPage(ctx, db, q, types.Pagination{Limit: 5, Offset: 10})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 12, total)
}

func TestSortDescendingNullsLast(t *testing.T) {
	s, db, clock := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Old Team", "Mid Team", "New Team"} {
		_, err := s.Teams.Create(ctx, db, map[string]any{"name": name})
		require.NoError(t, err)
		clock.advance(time.Hour)
	}
	// A row with no audit trail at all still sorts, just last.
	_, err := db.ExecContext(ctx,
		"INSERT INTO teams (id, is_active, name) VALUES (?, TRUE, ?)", "raw-1", "Untracked Team")
	require.NoError(t, err)

	items, err := s.Teams.Filter(ctx, db, store.Query{
		Sorting: types.Sorting{{Field: "created_at", Direction: types.Desc}},
	})
	require.NoError(t, err)
	require.Len(t, items, 4)
	require.Equal(t, "New Team", items[0].Name)
	require.Equal(t, "Mid Team", items[1].Name)
	require.Equal(t, "Old Team", items[2].Name)
	require.Equal(t, "Untracked Team", items[3].Name)
	require.True(t, items[3].CreatedAt.IsZero())
}

func TestSearchFilter(t *testing.T) {
	s, db, _ := newFixture(t)
	ctx := context.Background()

	_, err := s.Teams.Create(ctx, db, map[string]any{"name": "Alpha Team", "description": "first"})
	require.NoError(t, err)
	_, err = s.Teams.Create(ctx, db, map[string]any{"name": "Beta Squad", "description": "second"})
	require.NoError(t, err)

	// Case-insensitive, spaces match arbitrary text in between.
	items, err := s.Teams.Filter(ctx, db, store.Query{
		Filters: types.Filters{types.SearchFilterKey: "alpha team"},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Alpha Team", items[0].Name)

	// Description is search-like too.
	items, err = s.Teams.Filter(ctx, db, store.Query{
		Filters: types.Filters{types.SearchFilterKey: "SECOND"},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Beta Squad", items[0].Name)
}

func TestUnknownFilterFieldPanics(t *testing.T) {
	s, db, _ := newFixture(t)

	require.Panics(t, func() {
		_, _ = s.Teams.Filter(context.Background(), db, store.Query{
			Filters: types.Filters{"nme": "Alpha Team"},
		})
	})
	require.Panics(t, func() {
		_, _ = s.Teams.Filter(context.Background(), db, store.Query{
			Sorting: types.Sorting{{Field: "nope"}},
		})
	})
}

func TestSoftDeleteKeepsRow(t *testing.T) {
	s, db, _ := newFixture(t)
	ctx := context.Background()

	team, err := s.Teams.Create(ctx, db, map[string]any{"name": "Alpha Team"})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db, "teams"))

	require.NoError(t, s.Teams.Delete(ctx, db, team))
	require.Equal(t, 1, countRows(t, db, "teams"), "soft delete must not remove the row")
	require.False(t, team.IsActive)

	got, err := s.Teams.GetByID(ctx, db, team.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "soft-deleted records stay retrievable")
	require.False(t, got.IsActive)

	require.NoError(t, s.Teams.Undelete(ctx, db, got))
	require.True(t, got.IsActive)
}

func TestHardDeleteRemovesRow(t *testing.T) {
	s, db, _ := newFixture(t)
	ctx := context.Background()

	task, err := s.Tasks.Create(ctx, db, map[string]any{"title": "short-lived", "status": "open"})
	require.NoError(t, err)

	require.NoError(t, s.Tasks.Delete(ctx, db, task))
	require.Equal(t, 0, countRows(t, db, "tasks"))

	got, err := s.Tasks.GetByID(ctx, db, task.ID)
	require.NoError(t, err)
	require.Nil(t, got, "a missing row is an empty result, not an error")
}

func TestGetByName(t *testing.T) {
	s, db, _ := newFixture(t)
	ctx := context.Background()

	_, err := s.Teams.Create(ctx, db, map[string]any{"name": "Alpha Team"})
	require.NoError(t, err)

	got, err := s.Teams.GetByName(ctx, db, "Alpha Team")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Alpha Team", got.RecordName())

	got, err = s.Teams.GetByName(ctx, db, "No Such Team")
	require.NoError(t, err)
	require.Nil(t, got)

	// Tasks declare no name field; looking one up by name is a caller bug.
	require.Panics(t, func() {
		_, _ = s.Tasks.GetByName(ctx, db, "short-lived")
	})
}

func TestSaveInsideTransaction(t *testing.T) {
	s, db, _ := newFixture(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	_, err = s.Teams.Create(ctx, tx, map[string]any{"name": "Rolled Back"})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	got, err := s.Teams.GetByName(ctx, db, "Rolled Back")
	require.NoError(t, err)
	require.Nil(t, got, "rollback must discard the insert")
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
