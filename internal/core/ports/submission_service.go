package ports

import (
	"context"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// CreateSubmissionInput carries the decoded upload of a new submission.
type CreateSubmissionInput struct {
	PatientID      string
	Notes          string
	Image          domain.Upload
	IdempotencyKey string
}

// ReviewSubmissionInput carries the admin-authored review. PDFReport is optional.
type ReviewSubmissionInput struct {
	SubmissionID   string
	ReviewerID     string
	AdminNotes     string
	AnnotatedImage domain.Upload
	PDFReport      *domain.Upload
}

// SubmissionDetail is a submission together with its owner's summary.
// Patient is nil when the owner record no longer exists.
type SubmissionDetail struct {
	Submission *domain.Submission
	Patient    *domain.PatientSummary
}

// SubmissionService defines use-case operations for submissions.
type SubmissionService interface {
	// Create reports replayed=true when an earlier submission is returned for
	// the same idempotency key.
	Create(ctx context.Context, in CreateSubmissionInput) (sub *domain.Submission, replayed bool, err error)
	Review(ctx context.Context, in ReviewSubmissionInput) (*domain.Submission, error)
	ListForPatient(ctx context.Context, patientID string) ([]*domain.Submission, error)
	ListForAdmin(ctx context.Context) ([]SubmissionDetail, error)
	GetByID(ctx context.Context, caller domain.Identity, id string) (*SubmissionDetail, error)
	Events(ctx context.Context, caller domain.Identity, id string) ([]*domain.SubmissionEvent, error)
}
