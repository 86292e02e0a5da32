package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

func newTestEvent() domain.SubmissionEvent {
	return domain.SubmissionEvent{
		SubmissionID: "sub-1",
		Type:         domain.EventSubmissionReviewed,
		ActorID:      "admin-1",
		Status:       domain.StatusReviewed,
		OccurredAt:   time.Date(2026, 2, 19, 10, 0, 0, 0, time.UTC),
		HasReport:    true,
	}
}

func TestRecord_Success(t *testing.T) {
	repo := &stubEventRepo{}
	svc := NewEventService(repo, zerolog.Nop())

	if err := svc.Record(context.Background(), newTestEvent()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected 1 inserted event, got %d", len(repo.events))
	}
	got := repo.events[0]
	if got.SubmissionID != "sub-1" || got.Type != domain.EventSubmissionReviewed || !got.HasReport {
		t.Errorf("unexpected stored event: %+v", got)
	}
}

func TestRecord_Validation(t *testing.T) {
	cases := map[string]func(*domain.SubmissionEvent){
		"missing submission": func(e *domain.SubmissionEvent) { e.SubmissionID = "" },
		"unknown type":       func(e *domain.SubmissionEvent) { e.Type = "deleted" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &stubEventRepo{}
			svc := NewEventService(repo, zerolog.Nop())

			ev := newTestEvent()
			mutate(&ev)
			err := svc.Record(context.Background(), ev)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if len(repo.events) != 0 {
				t.Error("invalid events must not be stored")
			}
		})
	}
}

func TestRecord_RepoError(t *testing.T) {
	dbErr := errors.New("db down")
	svc := NewEventService(&stubEventRepo{err: dbErr}, zerolog.Nop())

	err := svc.Record(context.Background(), newTestEvent())
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
