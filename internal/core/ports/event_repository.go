package ports

import (
	"context"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// EventRepository persists the submission audit trail.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.SubmissionEvent) error
	// ListBySubmission returns events for one submission, oldest first.
	ListBySubmission(ctx context.Context, submissionID string) ([]*domain.SubmissionEvent, error)
}

// EventPublisher hands audit events off for asynchronous recording.
// Publish must not block the request path on persistence.
type EventPublisher interface {
	Publish(event domain.SubmissionEvent)
}
