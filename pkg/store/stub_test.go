package store

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// stubRecord backs the unit tests that need a Repository but no database.
type stubRecord struct {
	types.Record
	Name string
}

var stubSchema = types.MustSchema("stubs", "Stub",
	types.Field{Name: "id"},
	types.Field{Name: "creator_id"},
	types.Field{Name: "created_at"},
	types.Field{Name: "updated_at"},
	types.Field{Name: "name", SearchLike: true},
)

// plainSchema declares no search-like fields.
var plainSchema = types.MustSchema("plains", "Plain",
	types.Field{Name: "id"},
	types.Field{Name: "creator_id"},
	types.Field{Name: "created_at"},
	types.Field{Name: "updated_at"},
	types.Field{Name: "name"},
)

func stubMapping() Mapping[stubRecord] {
	return Mapping[stubRecord]{
		New: func() *stubRecord { return &stubRecord{} },
		Values: func(r *stubRecord) []any {
			return []any{r.ID, r.CreatorID, r.CreatedAt, r.UpdatedAt, r.Name}
		},
		Scan: func(row RowScanner) (*stubRecord, error) {
			var r stubRecord
			var creator sql.NullString
			if err := row.Scan(&r.ID, &creator, &r.CreatedAt, &r.UpdatedAt, &r.Name); err != nil {
				return nil, err
			}
			r.CreatorID = creator.String
			return &r, nil
		},
		Assign: func(r *stubRecord, field string, value any) error {
			switch field {
			case "id":
				r.ID = value.(string)
			case "name":
				s, ok := value.(string)
				if !ok {
					return fmt.Errorf("want string, got %T", value)
				}
				r.Name = s
			default:
				return fmt.Errorf("field %q has no accessor", field)
			}
			return nil
		},
	}
}

func newStubRepo(tb testing.TB, schema *types.Schema, dialect Dialect) *Repository[stubRecord] {
	tb.Helper()
	r, err := New(schema, dialect, stubMapping())
	if err != nil {
		tb.Fatalf("New failed: %v", err)
	}
	return r
}
