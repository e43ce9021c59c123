package state

import "time"

// EntityKind distinguishes the two record families kept in the journal.
type EntityKind string

// Journal record kinds.
const (
	KindGroup   EntityKind = "group"
	KindProject EntityKind = "project"
)

// Status captures how far an entity progressed.
type Status string

// Journal record statuses.
const (
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusSkipped    Status = "skipped"
)

// MigrationRecord is one durable journal entry. Kind and ID alone decide
// behavior on resume; Path and RecordedAt exist for operator forensics.
type MigrationRecord struct {
	Kind       EntityKind `json:"kind"`
	ID         int64      `json:"id"`
	Path       string     `json:"path"`
	Status     Status     `json:"status"`
	RecordedAt time.Time  `json:"recorded_at"`
}
