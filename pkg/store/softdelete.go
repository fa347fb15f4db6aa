package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/strata/pkg/types"
)

// ErrNotSoftDeletable is returned by NewSoftDeleting when the record type
// does not carry the soft-delete trait.
var ErrNotSoftDeletable = errors.New("record type must embed types.SoftDelete")

// SoftDeleting composes a Repository with logical deletion: Delete flips the
// active flag to false instead of removing the row, and Undelete flips it
// back. Both route through Save, so they get the same classification,
// logging, and refresh behavior as any other write. Listings that should
// hide inactive records must filter on the flag themselves; the base never
// injects that predicate.
type SoftDeleting[T any] struct {
	*Repository[T]
}

// NewSoftDeleting wraps a Repository whose record type is soft-deletable.
// The trait and the schema's active-flag field are checked once, here.
func NewSoftDeleting[T any](r *Repository[T]) (*SoftDeleting[T], error) {
	if _, ok := any(r.mapping.New()).(types.SoftDeletable); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotSoftDeletable, r.schema.Model())
	}
	if !r.schema.Has(activeField) {
		return nil, fmt.Errorf("%w: %s declares no %s field", ErrNotSoftDeletable, r.schema.Model(), activeField)
	}
	return &SoftDeleting[T]{Repository: r}, nil
}

// Delete marks the record inactive and saves it. The row is never removed.
func (s *SoftDeleting[T]) Delete(ctx context.Context, db DB, rec *T) error {
	any(rec).(types.SoftDeletable).SetActive(false)
	if err := s.Save(ctx, db, rec); err != nil {
		return err
	}
	s.logger.Debug("record soft-deleted", "model", s.schema.Model(), "id", s.audit(rec).RecordID())
	return nil
}

// Undelete reverses a soft delete.
func (s *SoftDeleting[T]) Undelete(ctx context.Context, db DB, rec *T) error {
	any(rec).(types.SoftDeletable).SetActive(true)
	if err := s.Save(ctx, db, rec); err != nil {
		return err
	}
	s.logger.Debug("record restored", "model", s.schema.Model(), "id", s.audit(rec).RecordID())
	return nil
}
