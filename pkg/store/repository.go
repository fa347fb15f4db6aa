package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// Field name conventions the engine relies on. Every schema must declare
// idField; soft-deletable records declare activeField.
const (
	idField     = "id"
	activeField = "is_active"
)

// Repository construction errors.
var (
	ErrNilSchema      = errors.New("schema must not be nil")
	ErrNilDialect     = errors.New("dialect must not be nil")
	ErrMappingInvalid = errors.New("mapping must define New, Values, Scan, and Assign")
	ErrNoIDField      = errors.New("schema must declare an id field")
	ErrNotAuditable   = errors.New("record type must embed types.Record")
	ErrValuesArity    = errors.New("mapping.Values length must match schema fields")
)

// Mapping is the explicit accessor set binding a record type to its schema.
// Values and Scan work in schema field order; Assign sets one declared field
// from a dynamic value and is the only reflection-free path for map-driven
// create/update payloads.
type Mapping[T any] struct {
	New    func() *T
	Values func(rec *T) []any
	Scan   func(row RowScanner) (*T, error)
	Assign func(rec *T, field string, value any) error
}

// Repository is the persistence base for one record type. It is stateless
// apart from its wiring and safe for concurrent use across distinct
// units-of-work.
type Repository[T any] struct {
	schema  *types.Schema
	dialect Dialect
	mapping Mapping[T]
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Repository at construction time.
type Option[T any] func(*Repository[T])

// WithLogger replaces the default slog logger.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(r *Repository[T]) { r.logger = logger }
}

// WithClock replaces the audit timestamp source. Tests inject a fixed clock
// here; the default is time.Now in UTC.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(r *Repository[T]) { r.now = now }
}

// New builds a Repository and validates the schema/mapping pairing once, at
// startup: the schema must declare an id field, the record type must carry
// the audit base, and Values must produce one value per declared field.
func New[T any](schema *types.Schema, dialect Dialect, mapping Mapping[T], opts ...Option[T]) (*Repository[T], error) {
	if schema == nil {
		return nil, ErrNilSchema
	}
	if dialect == nil {
		return nil, ErrNilDialect
	}
	if mapping.New == nil || mapping.Values == nil || mapping.Scan == nil || mapping.Assign == nil {
		return nil, ErrMappingInvalid
	}
	if !schema.Has(idField) {
		return nil, fmt.Errorf("%w: %s", ErrNoIDField, schema.Model())
	}

	probe := mapping.New()
	if _, ok := any(probe).(types.Auditable); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotAuditable, schema.Model())
	}
	if got, want := len(mapping.Values(probe)), len(schema.Fields()); got != want {
		return nil, fmt.Errorf("%w: %s has %d values for %d fields", ErrValuesArity, schema.Model(), got, want)
	}

	r := &Repository[T]{
		schema:  schema,
		dialect: dialect,
		mapping: mapping,
		logger:  slog.Default(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Schema returns the field registry the repository was built with.
func (r *Repository[T]) Schema() *types.Schema { return r.schema }

// audit returns the record's audit capability. New guarantees the assertion
// holds for every record the repository produces.
func (r *Repository[T]) audit(rec *T) types.Auditable {
	return any(rec).(types.Auditable)
}

// newRecordID generates a UUID v7 identifier.
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Create constructs a record from the declared-field entries of data and
// saves it. Unknown keys are silently ignored, so oversized payloads can be
// passed through unchanged. Soft-deletable records come up active unless
// data explicitly sets the flag.
func (r *Repository[T]) Create(ctx context.Context, db DB, data map[string]any) (*T, error) {
	rec := r.mapping.New()
	for _, key := range sortedKeys(data) {
		if !r.schema.Has(key) {
			continue
		}
		if err := r.mapping.Assign(rec, key, data[key]); err != nil {
			return nil, fmt.Errorf("assign %s.%s: %w", r.schema.Model(), key, err)
		}
	}
	if sd, ok := any(rec).(types.SoftDeletable); ok {
		if _, explicit := data[activeField]; !explicit {
			sd.SetActive(true)
		}
	}
	if err := r.Save(ctx, db, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies every entry of data as a field assignment, then saves.
// Assigning an undeclared field panics with types.UnknownFieldError; that is
// a caller bug, not user input.
func (r *Repository[T]) Update(ctx context.Context, db DB, rec *T, data map[string]any) error {
	for _, key := range sortedKeys(data) {
		f := r.schema.MustField(key)
		if err := r.mapping.Assign(rec, f.Name, data[key]); err != nil {
			return fmt.Errorf("assign %s.%s: %w", r.schema.Model(), key, err)
		}
	}
	return r.Save(ctx, db, rec)
}

// Save persists the record: an INSERT when it has no identifier yet (the
// store assigns a UUID v7 and stamps both audit timestamps to the same
// instant), an UPDATE otherwise (only the updated timestamp advances).
// Constraint failures are classified exactly once, here; the assigned id
// and stamps are rolled back so a corrected record saves cleanly. On
// success the in-memory record is refreshed from the backend so
// backend-computed defaults are visible.
func (r *Repository[T]) Save(ctx context.Context, db DB, rec *T) error {
	aud := r.audit(rec)
	wasNew := aud.RecordID() == ""
	prevCreated, prevUpdated := aud.AuditTimes()
	aud.Stamp(r.now())

	var err error
	if wasNew {
		aud.SetRecordID(newRecordID())
		err = r.insert(ctx, db, rec)
	} else {
		err = r.executeUpdate(ctx, db, rec)
	}
	if err != nil {
		// A failed flush leaves the record unsaved: the id and timestamps
		// go back, so the caller can fix the data and save again.
		if wasNew {
			aud.SetRecordID("")
		}
		aud.SetAuditTimes(prevCreated, prevUpdated)
		return r.Classify(err)
	}

	if wasNew {
		r.logger.Info("record created", "model", r.schema.Model(), "id", aud.RecordID())
	} else {
		r.logger.Info("record updated", "model", r.schema.Model(), "id", aud.RecordID())
	}

	return r.refresh(ctx, db, rec)
}

// Delete removes the record's row. Soft-deletable types normally go through
// SoftDeleting instead; this is the hard path.
func (r *Repository[T]) Delete(ctx context.Context, db DB, rec *T) error {
	id := r.audit(rec).RecordID()
	query := r.dialect.Rebind("DELETE FROM " + r.schema.Table() + " WHERE " + idField + " = ?")
	if _, err := db.ExecContext(ctx, query, id); err != nil {
		return r.Classify(err)
	}
	r.logger.Debug("record deleted", "model", r.schema.Model(), "id", id)
	return nil
}

func (r *Repository[T]) insert(ctx context.Context, db DB, rec *T) error {
	names := r.schema.FieldNames()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	query := "INSERT INTO " + r.schema.Table() +
		" (" + strings.Join(names, ", ") + ") VALUES (" + placeholders + ")"
	_, err := db.ExecContext(ctx, r.dialect.Rebind(query), r.mapping.Values(rec)...)
	return err
}

func (r *Repository[T]) executeUpdate(ctx context.Context, db DB, rec *T) error {
	names := r.schema.FieldNames()
	values := r.mapping.Values(rec)

	sets := make([]string, 0, len(names)-1)
	args := make([]any, 0, len(names))
	var id any
	for i, name := range names {
		if name == idField {
			id = values[i]
			continue
		}
		sets = append(sets, name+" = ?")
		args = append(args, values[i])
	}
	args = append(args, id)

	query := "UPDATE " + r.schema.Table() + " SET " + strings.Join(sets, ", ") +
		" WHERE " + idField + " = ?"
	_, err := db.ExecContext(ctx, r.dialect.Rebind(query), args...)
	return err
}

// refresh re-reads the row and overwrites the in-memory record with the
// backend's view of it.
func (r *Repository[T]) refresh(ctx context.Context, db DB, rec *T) error {
	id := r.audit(rec).RecordID()
	fresh, err := r.GetByID(ctx, db, id)
	if err != nil {
		return fmt.Errorf("refresh %s %s: %w", r.schema.Model(), id, err)
	}
	if fresh == nil {
		return fmt.Errorf("refresh %s %s: row vanished after flush", r.schema.Model(), id)
	}
	*rec = *fresh
	return nil
}

func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
