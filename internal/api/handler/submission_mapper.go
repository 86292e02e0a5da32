package handler

import (
	"github.com/dentalscribe/submission-api/internal/core/domain"
	"github.com/dentalscribe/submission-api/internal/core/ports"
)

// --- Domain → Response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.String(),
		PatientID: u.PatientID,
		CreatedAt: u.CreatedAt,
	}
}

func toSubmissionResponse(s *domain.Submission, owner *domain.PatientSummary) submissionResponse {
	resp := submissionResponse{
		ID:                s.ID,
		Patient:           s.PatientID,
		PatientNotes:      s.PatientNotes,
		AdminNotes:        s.AdminNotes,
		OriginalImageURL:  s.OriginalImageURL,
		AnnotatedImageURL: s.AnnotatedImageURL,
		PDFReportURL:      s.PDFReportURL,
		Status:            string(s.Status),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if owner != nil {
		resp.Patient = patientSummaryResponse{
			ID:        owner.ID,
			Name:      owner.Name,
			Email:     owner.Email,
			PatientID: owner.PatientID,
		}
	}
	return resp
}

func toSubmissionList(subs []*domain.Submission) []submissionResponse {
	out := make([]submissionResponse, len(subs))
	for i, s := range subs {
		out[i] = toSubmissionResponse(s, nil)
	}
	return out
}

func toDetailList(details []ports.SubmissionDetail) []submissionResponse {
	out := make([]submissionResponse, len(details))
	for i, d := range details {
		out[i] = toSubmissionResponse(d.Submission, d.Patient)
	}
	return out
}

func toEventList(events []*domain.SubmissionEvent) []submissionEventResponse {
	out := make([]submissionEventResponse, len(events))
	for i, e := range events {
		out[i] = submissionEventResponse{
			Type:       string(e.Type),
			ActorID:    e.ActorID,
			Status:     string(e.Status),
			HasReport:  e.HasReport,
			OccurredAt: e.OccurredAt,
		}
	}
	return out
}
