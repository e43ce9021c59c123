package state

import "time"

// Reader is the read side of a record store.
type Reader interface {
	Lookup(kind EntityKind, identifier int64) (Status, bool)
}

// Overlay keeps transitions in memory on top of a read-only base view.
// Dry runs route every write here so the journal on disk never changes.
type Overlay struct {
	base    Reader
	records map[recordKey]MigrationRecord
}

// NewOverlay wraps base with an in-memory write layer.
func NewOverlay(base Reader) *Overlay {
	return &Overlay{
		base:    base,
		records: make(map[recordKey]MigrationRecord),
	}
}

// Record keeps the transition in memory only.
func (overlay *Overlay) Record(kind EntityKind, identifier int64, path string, status Status) error {
	overlay.records[recordKey{kind: kind, identifier: identifier}] = MigrationRecord{
		Kind:       kind,
		ID:         identifier,
		Path:       path,
		Status:     status,
		RecordedAt: time.Now().UTC(),
	}

	return nil
}

// Lookup consults in-memory transitions before the base view.
func (overlay *Overlay) Lookup(kind EntityKind, identifier int64) (Status, bool) {
	record, found := overlay.records[recordKey{kind: kind, identifier: identifier}]
	if found {
		return record.Status, true
	}

	return overlay.base.Lookup(kind, identifier)
}
