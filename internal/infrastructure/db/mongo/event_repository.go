package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

const eventsCollection = "submission_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(eventsCollection)}
}

type mongoEvent struct {
	SubmissionID string    `bson:"submission_id"`
	Type         string    `bson:"type"`
	ActorID      string    `bson:"actor_id"`
	Status       string    `bson:"status"`
	OccurredAt   time.Time `bson:"occurred_at"`
	HasReport    bool      `bson:"has_report,omitempty"`
	RecordedAt   time.Time `bson:"recorded_at"`
}

// InsertEvent persists an audit event to the submission_events collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.SubmissionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoEvent{
		SubmissionID: event.SubmissionID,
		Type:         string(event.Type),
		ActorID:      event.ActorID,
		Status:       string(event.Status),
		OccurredAt:   event.OccurredAt.UTC(),
		HasReport:    event.HasReport,
		RecordedAt:   time.Now().UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *EventRepository) ListBySubmission(ctx context.Context, submissionID string) ([]*domain.SubmissionEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"submission_id": submissionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}

	var docs []mongoEvent
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	out := make([]*domain.SubmissionEvent, len(docs))
	for i, d := range docs {
		out[i] = &domain.SubmissionEvent{
			SubmissionID: d.SubmissionID,
			Type:         domain.EventType(d.Type),
			ActorID:      d.ActorID,
			Status:       domain.SubmissionStatus(d.Status),
			OccurredAt:   d.OccurredAt.UTC(),
			HasReport:    d.HasReport,
		}
	}
	return out, nil
}

func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "submission_id", Value: 1}, {Key: "occurred_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("events indexes: %w", err)
	}
	return nil
}
