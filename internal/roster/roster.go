// Package roster is the sample domain shipped with Strata: soft-deletable
// named teams and plain tasks with a foreign key to their team. It drives
// the strata CLI and doubles as the integration surface for the store
// engine's tests.
package roster

import (
	"context"
	_ "embed"

	"github.com/mesh-intelligence/strata/pkg/store"
	"github.com/mesh-intelligence/strata/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// Team is a soft-deletable, uniquely named group of people.
type Team struct {
	types.Record
	types.SoftDelete
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RecordName returns the unique display name.
func (t *Team) RecordName() string { return t.Name }

// Task is a unit of work, optionally assigned to a team.
type Task struct {
	types.Record
	Title  string `json:"title"`
	Status string `json:"status"`
	TeamID string `json:"team_id,omitempty"`
}

// TeamSchema declares the teams table fields. Name and description are
// search-like, so free-text search matches either.
var TeamSchema = types.MustSchema("teams", "Team",
	types.Field{Name: "id"},
	types.Field{Name: "creator_id"},
	types.Field{Name: "created_at"},
	types.Field{Name: "updated_at"},
	types.Field{Name: "is_active"},
	types.Field{Name: "name", SearchLike: true},
	types.Field{Name: "description", SearchLike: true},
)

// TaskSchema declares the tasks table fields.
var TaskSchema = types.MustSchema("tasks", "Task",
	types.Field{Name: "id"},
	types.Field{Name: "creator_id"},
	types.Field{Name: "created_at"},
	types.Field{Name: "updated_at"},
	types.Field{Name: "title", SearchLike: true},
	types.Field{Name: "status"},
	types.Field{Name: "team_id"},
)

// Store bundles the roster repositories over one dialect.
type Store struct {
	Teams *store.SoftDeleting[Team]
	Tasks *store.Repository[Task]
}

// New builds the roster repositories for the given dialect.
func New(dialect store.Dialect, teamOpts []store.Option[Team], taskOpts []store.Option[Task]) (*Store, error) {
	teams, err := NewTeamRepository(dialect, teamOpts...)
	if err != nil {
		return nil, err
	}
	tasks, err := NewTaskRepository(dialect, taskOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{Teams: teams, Tasks: tasks}, nil
}

// NewTeamRepository builds the soft-deleting team repository.
func NewTeamRepository(dialect store.Dialect, opts ...store.Option[Team]) (*store.SoftDeleting[Team], error) {
	base, err := store.New(TeamSchema, dialect, teamMapping(), opts...)
	if err != nil {
		return nil, err
	}
	return store.NewSoftDeleting(base)
}

// NewTaskRepository builds the task repository. Tasks hard-delete.
func NewTaskRepository(dialect store.Dialect, opts ...store.Option[Task]) (*store.Repository[Task], error) {
	return store.New(TaskSchema, dialect, taskMapping(), opts...)
}

// Migrate creates the roster tables if they do not exist.
func Migrate(ctx context.Context, db store.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return err
}
