package domain

import (
	"strings"
	"time"
)

// SubmissionStatus represents the lifecycle state of a submission.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusReviewed SubmissionStatus = "reviewed"
)

// validTransitions defines the allowed state machine transitions.
// reviewed → reviewed is a re-review that overwrites the admin fields.
var validTransitions = map[SubmissionStatus][]SubmissionStatus{
	StatusPending:  {StatusReviewed},
	StatusReviewed: {StatusReviewed},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Submission is a patient-initiated record tracking an uploaded image through
// optional admin review.
type Submission struct {
	ID                string           `json:"id"`
	PatientID         string           `json:"patient"`
	PatientNotes      string           `json:"patientNotes,omitempty"`
	AdminNotes        string           `json:"adminNotes,omitempty"`
	OriginalImageURL  string           `json:"originalImageUrl"`
	AnnotatedImageURL string           `json:"annotatedImageUrl,omitempty"`
	PDFReportURL      string           `json:"pdfReportUrl,omitempty"`
	Status            SubmissionStatus `json:"status"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// NewSubmission builds a pending submission owned by patientID.
func NewSubmission(patientID, notes, originalImageURL string, now time.Time) (*Submission, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, Validation("patient is required")
	}
	if strings.TrimSpace(originalImageURL) == "" {
		return nil, Validation("original image url is required")
	}
	return &Submission{
		PatientID:        patientID,
		PatientNotes:     notes,
		OriginalImageURL: originalImageURL,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Review is the compound set of admin-authored fields written by a review.
type Review struct {
	AdminNotes        string
	AnnotatedImageURL string
	PDFReportURL      string // empty when no report was attached
}

// ApplyReview sets every review field at once and moves the submission to
// reviewed. Owner and original image are never touched.
func (s *Submission) ApplyReview(r Review, now time.Time) error {
	if strings.TrimSpace(r.AnnotatedImageURL) == "" {
		return Validation("annotated image is required")
	}
	if !s.Status.CanTransitionTo(StatusReviewed) {
		return Validation("submission in status %q cannot be reviewed", s.Status)
	}
	s.AdminNotes = r.AdminNotes
	s.AnnotatedImageURL = r.AnnotatedImageURL
	s.PDFReportURL = r.PDFReportURL
	s.Status = StatusReviewed
	s.UpdatedAt = now
	return nil
}

// IsReviewed reports whether an admin has reviewed the submission.
func (s *Submission) IsReviewed() bool { return s.Status == StatusReviewed }

// Consistent reports whether status and annotated image agree:
// reviewed if and only if an annotated image is present.
func (s *Submission) Consistent() bool {
	return s.IsReviewed() == (s.AnnotatedImageURL != "")
}

// VisibleTo reports whether caller may read the submission. Admins read
// everything; patients only their own.
func (s *Submission) VisibleTo(caller Identity) bool {
	switch caller.Role {
	case RoleAdmin:
		return true
	case RolePatient:
		return caller.UserID != "" && caller.UserID == s.PatientID
	}
	return false
}
