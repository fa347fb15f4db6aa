package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// Query bundles the read-path inputs: exact-match filters (with the optional
// reserved search token), caller-supplied extra conditions, and ordering.
type Query struct {
	Filters    types.Filters
	Conditions []Condition
	Sorting    types.Sorting
}

// Filter returns every record matching the query, in sort order, with no
// pagination and no count.
func (r *Repository[T]) Filter(ctx context.Context, db DB, q Query) ([]*T, error) {
	query, args := r.buildSelect(q)
	return r.queryRecords(ctx, db, query, args)
}

// FilterPage returns one page of matching records plus the total matching
// count. The count reflects filters and conditions but never the
// limit/offset window, so it is computed before the window is applied.
func (r *Repository[T]) FilterPage(ctx context.Context, db DB, q Query, page types.Pagination) ([]*T, int, error) {
	conds := r.assembleConditions(q)
	where, whereArgs := whereClause(conds)

	var total int
	countQuery := r.dialect.Rebind("SELECT COUNT(*) FROM " + r.schema.Table() + where)
	if err := db.QueryRowContext(ctx, countQuery, whereArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.schema.Model(), err)
	}

	query := "SELECT " + r.columnList() + " FROM " + r.schema.Table() + where + r.orderBy(q.Sorting) +
		" LIMIT ? OFFSET ?"
	args := append(whereArgs, page.Limit, page.Offset)

	items, err := r.queryRecords(ctx, db, r.dialect.Rebind(query), args)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetByID looks up a single record by identifier. A missing row is an empty
// result, never an error.
func (r *Repository[T]) GetByID(ctx context.Context, db DB, id string) (*T, error) {
	return r.GetOneByConditions(ctx, db, r.Eq(idField, id))
}

// GetByName looks up a single record by its unique display name. The schema
// must declare a name field; records without one panic here, the same as any
// other unknown-field lookup.
func (r *Repository[T]) GetByName(ctx context.Context, db DB, name string) (*T, error) {
	return r.GetOneByConditions(ctx, db, r.Eq("name", name))
}

// GetOneByConditions returns the first record matching all conditions, or
// nil when nothing matches.
func (r *Repository[T]) GetOneByConditions(ctx context.Context, db DB, conds ...Condition) (*T, error) {
	where, args := whereClause(conds)
	query := r.dialect.Rebind("SELECT " + r.columnList() + " FROM " + r.schema.Table() + where + " LIMIT 1")

	rec, err := r.mapping.Scan(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.schema.Model(), err)
	}
	return rec, nil
}

// assembleConditions builds the final AND set: caller conditions, then the
// free-text search group extracted from the reserved filter key, then one
// equality predicate per remaining filter entry.
func (r *Repository[T]) assembleConditions(q Query) []Condition {
	conds := append([]Condition(nil), q.Conditions...)

	filters := q.Filters.Clone()
	if raw, ok := filters[types.SearchFilterKey]; ok {
		delete(filters, types.SearchFilterKey)
		if token, _ := raw.(string); token != "" {
			if c, ok := r.searchCondition(token); ok {
				conds = append(conds, c)
			}
		}
	}
	return append(conds, r.Conditions(filters)...)
}

func (r *Repository[T]) buildSelect(q Query) (string, []any) {
	where, args := whereClause(r.assembleConditions(q))
	query := "SELECT " + r.columnList() + " FROM " + r.schema.Table() + where + r.orderBy(q.Sorting)
	return r.dialect.Rebind(query), args
}

func (r *Repository[T]) columnList() string {
	return strings.Join(r.schema.FieldNames(), ", ")
}

// orderBy renders one clause per sort field, in request order, each sorting
// nulls last. Unknown field names panic.
func (r *Repository[T]) orderBy(sorting types.Sorting) string {
	if len(sorting) == 0 {
		return ""
	}
	clauses := make([]string, len(sorting))
	for i, s := range sorting {
		f := r.schema.MustField(s.Field)
		clauses[i] = r.dialect.OrderBy(f.Name, s.Direction)
	}
	return " ORDER BY " + strings.Join(clauses, ", ")
}

func (r *Repository[T]) queryRecords(ctx context.Context, db DB, query string, args []any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", r.schema.Model(), err)
	}
	defer rows.Close()

	var items []*T
	for rows.Next() {
		rec, err := r.mapping.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.schema.Model(), err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("filter %s: %w", r.schema.Model(), err)
	}
	return r.dedupe(items), nil
}

// dedupe drops repeated rows by record identity, keeping first-seen order.
func (r *Repository[T]) dedupe(items []*T) []*T {
	if len(items) < 2 {
		return items
	}
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, rec := range items {
		id := r.audit(rec).RecordID()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, rec)
	}
	return out
}
