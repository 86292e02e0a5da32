package ports

import (
	"context"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// SubmissionRepository defines persistence operations for submissions.
type SubmissionRepository interface {
	// Create inserts s and sets its ID.
	Create(ctx context.Context, s *domain.Submission) error
	FindByID(ctx context.Context, id string) (*domain.Submission, error)
	// ListByPatient returns the patient's submissions, newest first.
	ListByPatient(ctx context.Context, patientID string) ([]*domain.Submission, error)
	// ListAll returns every submission, newest first.
	ListAll(ctx context.Context) ([]*domain.Submission, error)
	// SaveReview writes all review fields of s in a single document update and
	// returns the stored result. Fails with ErrSubmissionNotFound when id is unknown.
	SaveReview(ctx context.Context, s *domain.Submission) (*domain.Submission, error)
}
