package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mesh-intelligence/strata/pkg/types"
)

func TestEqUnknownFieldPanics(t *testing.T) {
	r := newStubRepo(t, stubSchema, sqliteDialect{})
	defer func() {
		v := recover()
		if v == nil {
			t.Fatal("Eq on an unknown field did not panic")
		}
		uerr, ok := v.(types.UnknownFieldError)
		if !ok {
			t.Fatalf("panic value is %T, want types.UnknownFieldError", v)
		}
		if uerr.Field != "nme" || uerr.Model != "Stub" {
			t.Errorf("panic value = %v, want Stub/nme", uerr)
		}
	}()
	r.Eq("nme", "Alpha")
}

func TestConditionsSortedByField(t *testing.T) {
	r := newStubRepo(t, stubSchema, sqliteDialect{})
	conds := r.Conditions(map[string]any{"name": "Alpha", "creator_id": "u1"})
	if len(conds) != 2 {
		t.Fatalf("got %d conditions, want 2", len(conds))
	}
	if conds[0].Expr != "creator_id = ?" || conds[1].Expr != "name = ?" {
		t.Errorf("conditions out of order: %q, %q", conds[0].Expr, conds[1].Expr)
	}
	if !reflect.DeepEqual(conds[0].Args, []any{"u1"}) {
		t.Errorf("Args = %v, want [u1]", conds[0].Args)
	}
}

func TestSearchCondition(t *testing.T) {
	r := newStubRepo(t, stubSchema, sqliteDialect{})
	cond, ok := r.searchCondition("alpha team")
	if !ok {
		t.Fatal("searchCondition() = false, want a condition")
	}
	if cond.Expr != "(LOWER(name) LIKE LOWER(?))" {
		t.Errorf("Expr = %q", cond.Expr)
	}
	if !reflect.DeepEqual(cond.Args, []any{"%alpha%team%"}) {
		t.Errorf("Args = %v, want the wildcard pattern", cond.Args)
	}
}

func TestSearchConditionNoSearchFields(t *testing.T) {
	r := newStubRepo(t, plainSchema, sqliteDialect{})
	if _, ok := r.searchCondition("alpha"); ok {
		t.Fatal("searchCondition() = true for a schema with no search-like fields")
	}
}

func TestWhereClause(t *testing.T) {
	where, args := whereClause([]Condition{
		Cond("status = ?", "open"),
		Cond("team_id = ?", "t1"),
	})
	if where != " WHERE status = ? AND team_id = ?" {
		t.Errorf("where = %q", where)
	}
	if !reflect.DeepEqual(args, []any{"open", "t1"}) {
		t.Errorf("args = %v", args)
	}

	where, args = whereClause(nil)
	if where != "" || args != nil {
		t.Errorf("whereClause(nil) = %q, %v, want empty", where, args)
	}
}

func TestNewValidatesMapping(t *testing.T) {
	m := stubMapping()
	m.Values = func(r *stubRecord) []any { return []any{r.ID} }
	if _, err := New(stubSchema, sqliteDialect{}, m); !errors.Is(err, ErrValuesArity) {
		t.Fatalf("New() = %v, want ErrValuesArity", err)
	}

	if _, err := New[stubRecord](nil, sqliteDialect{}, stubMapping()); !errors.Is(err, ErrNilSchema) {
		t.Fatalf("New(nil schema) = %v, want ErrNilSchema", err)
	}
}
