// Package store implements the Strata repository engine: schema-driven CRUD
// with audit stamping, filtered/sorted/paginated querying, soft-delete
// composition, and classification of backend constraint violations into the
// typed errors of pkg/types.
//
// Every operation runs against a caller-supplied unit-of-work (DB), which is
// satisfied by both *sql.DB and *sql.Tx. The store never opens, commits, or
// rolls back the unit-of-work, performs no retries, and holds no locks;
// concurrent use of one unit-of-work is the caller's problem, exactly as it
// is with database/sql transactions.
package store
