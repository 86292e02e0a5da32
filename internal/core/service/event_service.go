package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dentalscribe/submission-api/internal/core/domain"
	"github.com/dentalscribe/submission-api/internal/core/ports"
)

type eventService struct {
	eventRepo ports.EventRepository
	log       zerolog.Logger
}

// NewEventService returns an EventService implementation.
func NewEventService(eventRepo ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{eventRepo: eventRepo, log: log}
}

// Record validates and persists a single audit event.
func (s *eventService) Record(ctx context.Context, ev domain.SubmissionEvent) error {
	if ev.SubmissionID == "" {
		return fmt.Errorf("record event: %w", domain.Validation("submission id is required"))
	}
	switch ev.Type {
	case domain.EventSubmissionCreated, domain.EventSubmissionReviewed:
	default:
		return fmt.Errorf("record event: %w", domain.Validation("unknown event type %q", ev.Type))
	}

	if err := s.eventRepo.InsertEvent(ctx, &ev); err != nil {
		return fmt.Errorf("record event: %w", err)
	}

	s.log.Debug().
		Str("submission_id", ev.SubmissionID).
		Str("type", string(ev.Type)).
		Str("actor_id", ev.ActorID).
		Msg("audit event recorded")
	return nil
}
