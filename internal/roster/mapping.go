package roster

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/strata/pkg/store"
)

// timeLayout is a fixed-width RFC3339 variant so stored timestamps sort
// lexicographically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func teamMapping() store.Mapping[Team] {
	return store.Mapping[Team]{
		New: func() *Team { return &Team{} },
		Values: func(t *Team) []any {
			return []any{
				t.ID,
				nullString(t.CreatorID),
				nullTime(t.CreatedAt),
				nullTime(t.UpdatedAt),
				t.IsActive,
				t.Name,
				nullString(t.Description),
			}
		},
		Scan: func(row store.RowScanner) (*Team, error) {
			var t Team
			var creator, createdAt, updatedAt, desc sql.NullString
			if err := row.Scan(&t.ID, &creator, &createdAt, &updatedAt, &t.IsActive, &t.Name, &desc); err != nil {
				return nil, err
			}
			t.CreatorID = creator.String
			t.Description = desc.String
			t.CreatedAt = parseTime(createdAt)
			t.UpdatedAt = parseTime(updatedAt)
			return &t, nil
		},
		Assign: func(t *Team, field string, value any) error {
			switch field {
			case "id":
				return assignString(&t.ID, value)
			case "creator_id":
				return assignString(&t.CreatorID, value)
			case "created_at":
				return assignTime(&t.CreatedAt, value)
			case "updated_at":
				return assignTime(&t.UpdatedAt, value)
			case "is_active":
				return assignBool(&t.IsActive, value)
			case "name":
				return assignString(&t.Name, value)
			case "description":
				return assignString(&t.Description, value)
			default:
				return fmt.Errorf("field %q has no accessor", field)
			}
		},
	}
}

func taskMapping() store.Mapping[Task] {
	return store.Mapping[Task]{
		New: func() *Task { return &Task{} },
		Values: func(t *Task) []any {
			return []any{
				t.ID,
				nullString(t.CreatorID),
				nullTime(t.CreatedAt),
				nullTime(t.UpdatedAt),
				t.Title,
				t.Status,
				nullString(t.TeamID),
			}
		},
		Scan: func(row store.RowScanner) (*Task, error) {
			var t Task
			var creator, createdAt, updatedAt, teamID sql.NullString
			if err := row.Scan(&t.ID, &creator, &createdAt, &updatedAt, &t.Title, &t.Status, &teamID); err != nil {
				return nil, err
			}
			t.CreatorID = creator.String
			t.TeamID = teamID.String
			t.CreatedAt = parseTime(createdAt)
			t.UpdatedAt = parseTime(updatedAt)
			return &t, nil
		},
		Assign: func(t *Task, field string, value any) error {
			switch field {
			case "id":
				return assignString(&t.ID, value)
			case "creator_id":
				return assignString(&t.CreatorID, value)
			case "created_at":
				return assignTime(&t.CreatedAt, value)
			case "updated_at":
				return assignTime(&t.UpdatedAt, value)
			case "title":
				return assignString(&t.Title, value)
			case "status":
				return assignString(&t.Status, value)
			case "team_id":
				return assignString(&t.TeamID, value)
			default:
				return fmt.Errorf("field %q has no accessor", field)
			}
		},
	}
}

// nullString maps the empty string to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullTime maps the zero time to SQL NULL, otherwise to fixed-width UTC text.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(ns sql.NullString) time.Time {
	if !ns.Valid {
		return time.Time{}
	}
	t, _ := time.Parse(timeLayout, ns.String)
	return t
}

func assignString(dst *string, value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("want string, got %T", value)
	}
	*dst = s
	return nil
}

func assignBool(dst *bool, value any) error {
	b, ok := value.(bool)
	if !ok {
		return fmt.Errorf("want bool, got %T", value)
	}
	*dst = b
	return nil
}

func assignTime(dst *time.Time, value any) error {
	switch v := value.(type) {
	case time.Time:
		*dst = v
		return nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("want RFC3339 time: %w", err)
		}
		*dst = t
		return nil
	default:
		return fmt.Errorf("want time, got %T", value)
	}
}
