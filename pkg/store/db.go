package store

import (
	"context"
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// DB is the unit-of-work handle every operation runs against. Both *sql.DB
// and *sql.Tx satisfy it; transaction lifecycle (begin, commit, rollback)
// belongs entirely to the caller.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DB = (*sql.DB)(nil)
	_ DB = (*sql.Tx)(nil)
)

// RowScanner is the subset of *sql.Row and *sql.Rows a Mapping's Scan
// function reads from.
type RowScanner interface {
	Scan(dest ...any) error
}

// Open opens a database handle for the configured backend. SQLite DSNs get
// foreign-key enforcement switched on unless the DSN already configures it.
func Open(cfg types.Config) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case types.BackendSQLite:
		return sql.Open("sqlite", sqliteDSN(cfg.DSN))
	default:
		return sql.Open("pgx", cfg.DSN)
	}
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}
