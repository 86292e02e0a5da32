package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dentalscribe/submission-api/internal/core/domain"
	"github.com/dentalscribe/submission-api/internal/core/ports"
)

const releaseTimeout = 2 * time.Second

// SubmissionOption configures optional collaborators of SubmissionService.
type SubmissionOption func(*SubmissionService)

// WithIdempotency enables Idempotency-Key replay on Create.
func WithIdempotency(store ports.IdempotencyStore) SubmissionOption {
	return func(s *SubmissionService) { s.idem = store }
}

// WithAuditTrail publishes lifecycle events and serves them back from repo.
func WithAuditTrail(pub ports.EventPublisher, repo ports.EventRepository) SubmissionOption {
	return func(s *SubmissionService) {
		s.events = pub
		s.eventRepo = repo
	}
}

type SubmissionService struct {
	repo      ports.SubmissionRepository
	users     ports.UserRepository
	blobs     ports.BlobStore
	idem      ports.IdempotencyStore
	events    ports.EventPublisher
	eventRepo ports.EventRepository
	logger    zerolog.Logger
	now       func() time.Time
}

func NewSubmissionService(
	repo ports.SubmissionRepository,
	users ports.UserRepository,
	blobs ports.BlobStore,
	logger zerolog.Logger,
	opts ...SubmissionOption,
) *SubmissionService {
	s := &SubmissionService{
		repo:   repo,
		users:  users,
		blobs:  blobs,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create uploads the image and persists a pending submission owned by the
// caller. Nothing is persisted when the upload fails. replayed reports that an
// earlier submission was returned for the same Idempotency-Key.
func (s *SubmissionService) Create(ctx context.Context, in ports.CreateSubmissionInput) (sub *domain.Submission, replayed bool, err error) {
	if in.PatientID == "" {
		return nil, false, domain.ErrUnauthorized
	}
	if in.Image.Empty() {
		return nil, false, domain.Validation("image file is required")
	}
	if !domain.IsAcceptedImage(in.Image.MimeType) {
		return nil, false, domain.Validation("unsupported image type %q", in.Image.MimeType)
	}

	idemKey := ""
	if in.IdempotencyKey != "" && s.idem != nil {
		idemKey = in.PatientID + ":" + in.IdempotencyKey
		existing, reserved, err := s.reserve(ctx, idemKey, in.PatientID)
		switch {
		case err != nil:
			return nil, false, err
		case existing != nil:
			return existing, true, nil
		case !reserved:
			idemKey = ""
		default:
			defer func() {
				if sub == nil {
					s.release(idemKey)
				}
			}()
		}
	}

	url, err := s.blobs.Store(ctx, in.Image)
	if err != nil {
		s.logger.Error().Err(err).Str("patient_id", in.PatientID).Msg("original image upload failed")
		return nil, false, domain.Storage("original image", err)
	}

	created, err := domain.NewSubmission(in.PatientID, in.Notes, url, s.now().UTC())
	if err != nil {
		return nil, false, err
	}

	if err := s.repo.Create(ctx, created); err != nil {
		// The uploaded artifact is left in place; there is no compensating delete.
		s.logger.Error().Err(err).Str("patient_id", in.PatientID).Str("artifact", url).Msg("failed to persist submission")
		return nil, false, domain.Persistence("create submission", err)
	}

	if idemKey != "" {
		if err := s.idem.Complete(ctx, idemKey, created.ID); err != nil {
			s.logger.Warn().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}

	s.publish(created, domain.EventSubmissionCreated, in.PatientID)
	s.logger.Info().Str("submission_id", created.ID).Str("patient_id", in.PatientID).Msg("submission created")
	return created, false, nil
}

// Review uploads the annotated image and optional report, then writes every
// review field in one update. The stored record is untouched on any failure.
func (s *SubmissionService) Review(ctx context.Context, in ports.ReviewSubmissionInput) (*domain.Submission, error) {
	if in.AnnotatedImage.Empty() {
		return nil, domain.Validation("annotated image is required")
	}
	if !domain.IsAcceptedImage(in.AnnotatedImage.MimeType) {
		return nil, domain.Validation("unsupported annotated image type %q", in.AnnotatedImage.MimeType)
	}
	if in.PDFReport != nil {
		if in.PDFReport.Empty() {
			return nil, domain.Validation("pdf report is empty")
		}
		if domain.NormalizeMime(in.PDFReport.MimeType) != domain.MimePDF {
			return nil, domain.Validation("pdf report must be %s", domain.MimePDF)
		}
	}

	sub, err := s.repo.FindByID(ctx, in.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("review submission: %w", err)
	}

	annotatedURL, pdfURL, err := s.uploadReviewArtifacts(ctx, in)
	if err != nil {
		s.logger.Error().Err(err).Str("submission_id", in.SubmissionID).Msg("review upload failed")
		return nil, err
	}

	review := domain.Review{
		AdminNotes:        in.AdminNotes,
		AnnotatedImageURL: annotatedURL,
		PDFReportURL:      pdfURL,
	}
	if err := sub.ApplyReview(review, s.now().UTC()); err != nil {
		return nil, err
	}

	saved, err := s.repo.SaveReview(ctx, sub)
	if err != nil {
		if errors.Is(err, domain.ErrSubmissionNotFound) {
			return nil, fmt.Errorf("review submission: %w", err)
		}
		s.logger.Error().Err(err).Str("submission_id", sub.ID).Msg("failed to persist review")
		return nil, domain.Persistence("save review", err)
	}

	s.publish(saved, domain.EventSubmissionReviewed, in.ReviewerID)
	s.logger.Info().
		Str("submission_id", saved.ID).
		Str("reviewer_id", in.ReviewerID).
		Bool("with_report", pdfURL != "").
		Msg("submission reviewed")
	return saved, nil
}

func (s *SubmissionService) uploadReviewArtifacts(ctx context.Context, in ports.ReviewSubmissionInput) (string, string, error) {
	var annotatedURL, pdfURL string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := s.blobs.Store(gctx, in.AnnotatedImage)
		if err != nil {
			return domain.Storage("annotated image", err)
		}
		annotatedURL = url
		return nil
	})
	if in.PDFReport != nil {
		g.Go(func() error {
			url, err := s.blobs.Store(gctx, *in.PDFReport)
			if err != nil {
				return domain.Storage("pdf report", err)
			}
			pdfURL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return annotatedURL, pdfURL, nil
}

// ListForPatient returns the caller's submissions, newest first.
func (s *SubmissionService) ListForPatient(ctx context.Context, patientID string) ([]*domain.Submission, error) {
	if patientID == "" {
		return nil, domain.ErrUnauthorized
	}
	subs, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list patient submissions: %w", err)
	}
	return subs, nil
}

// ListForAdmin returns every submission with its owner's summary, newest first.
func (s *SubmissionService) ListForAdmin(ctx context.Context) ([]ports.SubmissionDetail, error) {
	subs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	ids := make([]string, 0, len(subs))
	seen := make(map[string]struct{}, len(subs))
	for _, sub := range subs {
		if _, ok := seen[sub.PatientID]; ok {
			continue
		}
		seen[sub.PatientID] = struct{}{}
		ids = append(ids, sub.PatientID)
	}

	owners, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list submissions: load owners: %w", err)
	}

	out := make([]ports.SubmissionDetail, len(subs))
	for i, sub := range subs {
		out[i] = ports.SubmissionDetail{Submission: sub}
		if u, ok := owners[sub.PatientID]; ok {
			summary := u.Summary()
			out[i].Patient = &summary
		}
	}
	return out, nil
}

// GetByID returns a submission the caller is allowed to see. Patients other
// than the owner get ErrForbidden.
func (s *SubmissionService) GetByID(ctx context.Context, caller domain.Identity, id string) (*ports.SubmissionDetail, error) {
	sub, err := s.visible(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	detail := &ports.SubmissionDetail{Submission: sub}
	owner, err := s.users.FindByID(ctx, sub.PatientID)
	switch {
	case err == nil:
		summary := owner.Summary()
		detail.Patient = &summary
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		s.logger.Warn().Err(err).Str("submission_id", sub.ID).Msg("failed to load submission owner")
	}
	return detail, nil
}

// Events returns the audit trail of a submission under the same visibility
// rule as GetByID.
func (s *SubmissionService) Events(ctx context.Context, caller domain.Identity, id string) ([]*domain.SubmissionEvent, error) {
	if _, err := s.visible(ctx, caller, id); err != nil {
		return nil, err
	}
	if s.eventRepo == nil {
		return []*domain.SubmissionEvent{}, nil
	}
	events, err := s.eventRepo.ListBySubmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list submission events: %w", err)
	}
	return events, nil
}

func (s *SubmissionService) visible(ctx context.Context, caller domain.Identity, id string) (*domain.Submission, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	if !sub.VisibleTo(caller) {
		return nil, domain.ErrForbidden
	}
	return sub, nil
}

// reserve claims key for this request. It returns the earlier submission when
// the key already completed, and ErrRequestInFlight while another request
// holds it. reserved is false when the store is unavailable; the create then
// proceeds without replay protection.
func (s *SubmissionService) reserve(ctx context.Context, key, patientID string) (*domain.Submission, bool, error) {
	reserved, id, err := s.idem.Reserve(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("idempotency reserve failed, creating anyway")
		return nil, false, nil
	}
	if reserved {
		return nil, true, nil
	}
	if id == "" {
		return nil, false, domain.ErrRequestInFlight
	}
	existing, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, domain.ErrSubmissionNotFound) {
		s.logger.Warn().Str("submission_id", id).Msg("idempotency key points at a missing submission, creating anyway")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("replay submission: %w", err)
	}
	if existing.PatientID != patientID {
		return nil, false, domain.ErrForbidden
	}
	s.logger.Info().Str("submission_id", existing.ID).Msg("idempotent replay")
	return existing, false, nil
}

// release frees a reservation after a failed create. It runs on a fresh
// context so a cancelled request still releases its key.
func (s *SubmissionService) release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := s.idem.Release(ctx, key); err != nil {
		s.logger.Warn().Err(err).Msg("failed to release idempotency key")
	}
}

func (s *SubmissionService) publish(sub *domain.Submission, typ domain.EventType, actorID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.SubmissionEvent{
		SubmissionID: sub.ID,
		Type:         typ,
		ActorID:      actorID,
		Status:       sub.Status,
		OccurredAt:   sub.UpdatedAt,
		HasReport:    sub.PDFReportURL != "",
	})
}
