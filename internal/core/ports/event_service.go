package ports

import (
	"context"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// EventService records audit events handed over by the dispatcher.
type EventService interface {
	Record(ctx context.Context, event domain.SubmissionEvent) error
}
