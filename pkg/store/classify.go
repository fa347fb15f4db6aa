package store

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// Postgres reports constraint violations with a structured detail line;
// SQLite only names the columns for unique violations. Patterns are matched
// in order: uniqueness first, then reference, then the generic fallback.
var (
	reAlreadyExists = regexp.MustCompile(`[Kk]ey \((.+?)\)=\(.*?\) already exists`)
	reNotPresent    = regexp.MustCompile(`[Kk]ey \((.+?)\)=\(.*?\) is not present in table`)
	reSQLiteUnique  = regexp.MustCompile(`UNIQUE constraint failed: (.+?)(?: \(\d+\))?$`)
)

// SQLSTATE codes for the classified constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Classify maps a write-path failure to a typed error. Structured Postgres
// metadata is preferred; free-text patterns are the compatibility shim for
// drivers that only surface a message. A constraint failure that matches no
// pattern becomes an IntegrityError and is logged with full driver detail;
// anything that does not look like a constraint failure passes through
// unchanged so connection and syntax errors stay distinguishable.
func (r *Repository[T]) Classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return r.classifyPostgres(pgErr, err)
	}

	msg := err.Error()
	if cols, ok := matchColumns(reAlreadyExists, msg); ok {
		return &types.ValidationError{Model: r.schema.Model(), Columns: cols, Kind: types.ConstraintUnique, Err: err}
	}
	if cols, ok := matchColumns(reNotPresent, msg); ok {
		return &types.ValidationError{Model: r.schema.Model(), Columns: cols, Kind: types.ConstraintReference, Err: err}
	}
	if cols, ok := matchColumns(reSQLiteUnique, msg); ok {
		return &types.ValidationError{Model: r.schema.Model(), Columns: cols, Kind: types.ConstraintUnique, Err: err}
	}
	if strings.Contains(msg, "constraint") {
		return r.integrity(err)
	}
	return err
}

func (r *Repository[T]) classifyPostgres(pgErr *pgconn.PgError, err error) error {
	switch pgErr.Code {
	case pgUniqueViolation:
		if cols, ok := matchColumns(reAlreadyExists, pgErr.Detail); ok {
			return &types.ValidationError{Model: r.schema.Model(), Columns: cols, Kind: types.ConstraintUnique, Err: err}
		}
	case pgForeignKeyViolation:
		if cols, ok := matchColumns(reNotPresent, pgErr.Detail); ok {
			return &types.ValidationError{Model: r.schema.Model(), Columns: cols, Kind: types.ConstraintReference, Err: err}
		}
	}
	// SQLSTATE class 23 is "integrity constraint violation".
	if strings.HasPrefix(pgErr.Code, "23") {
		return r.integrity(err)
	}
	return err
}

func (r *Repository[T]) integrity(err error) error {
	r.logger.Error("unclassified integrity error",
		"model", r.schema.Model(), "error", err)
	return &types.IntegrityError{Model: r.schema.Model(), Err: err}
}

// matchColumns applies a classification pattern and returns the column list
// from its first capture group. An empty capture falls through to the next
// pattern, matching the original free-text semantics.
func matchColumns(re *regexp.Regexp, text string) ([]string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil || m[1] == "" {
		return nil, false
	}
	parts := strings.Split(m[1], ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		col := strings.TrimSpace(p)
		// SQLite qualifies columns as table.column; keep the column only.
		if i := strings.LastIndexByte(col, '.'); i >= 0 {
			col = col[i+1:]
		}
		if col != "" {
			cols = append(cols, col)
		}
	}
	if len(cols) == 0 {
		return nil, false
	}
	return cols, true
}
