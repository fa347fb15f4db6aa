package types

import (
	"fmt"
	"time"
)

// Record is the embeddable audit base for all persisted entities. The store
// assigns ID on first save; it must not change afterwards. CreatedAt and
// UpdatedAt are stamped by the store on every save, both to the same instant
// when the record is first inserted.
type Record struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creator_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// String identifies the record by id for logs and diagnostics.
func (r *Record) String() string {
	return fmt.Sprintf("<Record(id=%s)>", r.ID)
}

// RecordID returns the store-assigned identifier, empty until first save.
func (r *Record) RecordID() string { return r.ID }

// SetRecordID assigns the identifier. Called by the store exactly once,
// on first insert.
func (r *Record) SetRecordID(id string) { r.ID = id }

// Stamp updates the audit timestamps for a save at the given instant.
// CreatedAt is only set when still zero, so updates never rewrite it.
func (r *Record) Stamp(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// AuditTimes returns the audit timestamps as last stamped.
func (r *Record) AuditTimes() (created, updated time.Time) {
	return r.CreatedAt, r.UpdatedAt
}

// SetAuditTimes overwrites both audit timestamps. The store uses it to roll
// a stamp back when the flush fails.
func (r *Record) SetAuditTimes(created, updated time.Time) {
	r.CreatedAt = created
	r.UpdatedAt = updated
}

// Auditable is the capability every persisted record must provide.
// Embedding Record satisfies it.
type Auditable interface {
	RecordID() string
	SetRecordID(id string)
	Stamp(now time.Time)
	AuditTimes() (created, updated time.Time)
	SetAuditTimes(created, updated time.Time)
}

// Named marks records carrying a unique, required display name.
type Named interface {
	RecordName() string
}

// SoftDeletable marks records whose deletion is a logical state transition:
// the row stays, the active flag flips.
type SoftDeletable interface {
	Active() bool
	SetActive(active bool)
}

// SoftDelete is the embeddable default SoftDeletable implementation.
type SoftDelete struct {
	IsActive bool `json:"is_active"`
}

// Active reports whether the record is logically present.
func (s *SoftDelete) Active() bool { return s.IsActive }

// SetActive flips the logical-presence flag.
func (s *SoftDelete) SetActive(active bool) { s.IsActive = active }
