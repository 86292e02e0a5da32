package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type registerRequest struct {
	Name      string `json:"name"      validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required"`
	PatientID string `json:"patientId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	PatientID string    `json:"patientId,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type reviewRequest struct {
	AdminNotes            string `json:"adminNotes"`
	AnnotatedImageDataURL string `json:"annotatedImageDataUrl" validate:"required"`
	PDFDataURL            string `json:"pdfDataUrl"`
}

type patientSummaryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	PatientID string `json:"patientId,omitempty"`
}

// submissionResponse renders a submission. Patient is the owner id, or the
// owner summary on the admin and detail views.
type submissionResponse struct {
	ID                string    `json:"id"`
	Patient           any       `json:"patient" swaggertype:"object"`
	PatientNotes      string    `json:"patientNotes,omitempty"`
	AdminNotes        string    `json:"adminNotes,omitempty"`
	OriginalImageURL  string    `json:"originalImageUrl"`
	AnnotatedImageURL string    `json:"annotatedImageUrl,omitempty"`
	PDFReportURL      string    `json:"pdfReportUrl,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type submissionEventResponse struct {
	Type       string    `json:"type"`
	ActorID    string    `json:"actorId"`
	Status     string    `json:"status"`
	HasReport  bool      `json:"hasReport,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
