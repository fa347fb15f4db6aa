package store

import (
	"sort"
	"strings"
)

// Condition is one query predicate: a SQL expression with '?' placeholders
// and its arguments. Conditions are combined with AND by the query executor.
type Condition struct {
	Expr string
	Args []any
}

// Cond builds a caller-supplied predicate from a raw expression. The
// expression must use '?' placeholders.
func Cond(expr string, args ...any) Condition {
	return Condition{Expr: expr, Args: args}
}

// Eq builds an equality predicate on a declared field. An unknown field name
// panics with types.UnknownFieldError.
func (r *Repository[T]) Eq(field string, value any) Condition {
	f := r.schema.MustField(field)
	return Condition{Expr: f.Name + " = ?", Args: []any{value}}
}

// Conditions turns a flat field-to-value map into one equality predicate per
// pair, in field-name order. Unknown field names panic.
func (r *Repository[T]) Conditions(filters map[string]any) []Condition {
	if len(filters) == 0 {
		return nil
	}
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	conds := make([]Condition, 0, len(names))
	for _, name := range names {
		conds = append(conds, r.Eq(name, filters[name]))
	}
	return conds
}

// searchCondition builds the free-text predicate: one case-insensitive
// substring match per search-like field, OR-combined. Spaces in the token
// act as wildcards, so a multi-word phrase matches tokens separated by
// arbitrary text. Returns false when the record type declares no search-like
// fields; the group then simply does not exist, leaving the query unchanged.
func (r *Repository[T]) searchCondition(token string) (Condition, bool) {
	fields := r.schema.SearchLikeFields()
	if len(fields) == 0 {
		return Condition{}, false
	}

	pattern := "%" + strings.ReplaceAll(token, " ", "%") + "%"
	parts := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, f := range fields {
		parts[i] = r.dialect.SearchLike(f.Name)
		args[i] = pattern
	}
	return Condition{Expr: "(" + strings.Join(parts, " OR ") + ")", Args: args}, true
}

// whereClause joins conditions with AND. Returns an empty string and no args
// when there are no conditions.
func whereClause(conds []Condition) (string, []any) {
	if len(conds) == 0 {
		return "", nil
	}
	exprs := make([]string, len(conds))
	var args []any
	for i, c := range conds {
		exprs[i] = c.Expr
		args = append(args, c.Args...)
	}
	return " WHERE " + strings.Join(exprs, " AND "), args
}
