package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// Dialect covers the SQL differences between supported backends: placeholder
// style, case-insensitive substring matching, and null ordering.
type Dialect interface {
	// Name returns the backend name this dialect serves.
	Name() string

	// Rebind rewrites '?' placeholders into the dialect's native style.
	// Queries are generated internally, so '?' never appears in literals.
	Rebind(query string) string

	// SearchLike returns a case-insensitive substring predicate on the
	// column, containing exactly one '?' placeholder for the pattern.
	SearchLike(column string) string

	// OrderBy returns an ordering clause for the column that sorts null
	// values last regardless of direction.
	OrderBy(column string, dir types.Direction) string
}

// DialectFor returns the dialect for a backend name from types.Config.
func DialectFor(backend string) (Dialect, error) {
	switch backend {
	case types.BackendSQLite:
		return sqliteDialect{}, nil
	case types.BackendPostgres:
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrBackendUnknown, backend)
	}
}

// MustDialect is DialectFor for static backend names; it panics on an
// unknown backend.
func MustDialect(backend string) Dialect {
	d, err := DialectFor(backend)
	if err != nil {
		panic(err)
	}
	return d
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return types.BackendSQLite }

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) SearchLike(column string) string {
	return "LOWER(" + column + ") LIKE LOWER(?)"
}

func (sqliteDialect) OrderBy(column string, dir types.Direction) string {
	return column + " " + direction(dir) + " NULLS LAST"
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return types.BackendPostgres }

func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (postgresDialect) SearchLike(column string) string {
	return column + " ILIKE ?"
}

func (postgresDialect) OrderBy(column string, dir types.Direction) string {
	return column + " " + direction(dir) + " NULLS LAST"
}

func direction(dir types.Direction) string {
	if dir == types.Desc {
		return "DESC"
	}
	return "ASC"
}
