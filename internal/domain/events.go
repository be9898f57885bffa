package domain

import "time"

// ChangeType classifies a change-feed event.
type ChangeType string

// Change-feed event types mirroring row mutations in the job store.
const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// ChangeEvent is one row mutation delivered to subscribers of a user's
// change feed. Job is nil for delete events. Delivery is at-least-once;
// consumers must treat application as an idempotent overwrite by JobID.
type ChangeEvent struct {
	Seq       int64             `json:"seq"`
	Type      ChangeType        `json:"type"`
	UserID    string            `json:"userId"`
	JobID     string            `json:"jobId"`
	Job       *TranscriptionJob `json:"job,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
