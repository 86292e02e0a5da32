package domain

import "time"

// EventType names a lifecycle step recorded in the audit trail.
type EventType string

const (
	EventSubmissionCreated  EventType = "created"
	EventSubmissionReviewed EventType = "reviewed"
)

// SubmissionEvent is one audit entry for a submission.
type SubmissionEvent struct {
	SubmissionID string           `json:"submissionId"`
	Type         EventType        `json:"type"`
	ActorID      string           `json:"actorId"`
	Status       SubmissionStatus `json:"status"`
	OccurredAt   time.Time        `json:"occurredAt"`
	HasReport    bool             `json:"hasReport,omitempty"`
}
