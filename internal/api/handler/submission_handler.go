package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/dentalscribe/submission-api/internal/api/metrics"
	"github.com/dentalscribe/submission-api/internal/core/domain"
	"github.com/dentalscribe/submission-api/internal/core/ports"
)

const headerIdempotencyKey = "Idempotency-Key"

// SubmissionHandler handles HTTP requests for submission operations.
type SubmissionHandler struct {
	service ports.SubmissionService
}

func NewSubmissionHandler(service ports.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// Create handles POST /submissions.
//
// @Summary      Submit an image for review
// @Tags         submissions
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string  false  "Idempotency key to prevent duplicate submissions"
// @Param        image            formData  file    true   "Dental image"
// @Param        notes            formData  string  false  "Patient notes"
// @Success      200              {object}  submissionResponse  "Replay of an earlier request with the same key"
// @Success      201              {object}  submissionResponse
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /submissions [post]
func (h *SubmissionHandler) Create(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return domain.Validation("image file is required")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}

	image, err := readFormFile(file)
	if err != nil {
		return err
	}

	sub, replayed, err := h.service.Create(c.Request().Context(), ports.CreateSubmissionInput{
		PatientID:      identity.UserID,
		Notes:          c.FormValue("notes"),
		Image:          image,
		IdempotencyKey: c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		return err
	}

	if replayed {
		return c.JSON(http.StatusOK, toSubmissionResponse(sub, nil))
	}
	metrics.SubmissionsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toSubmissionResponse(sub, nil))
}

// ListMine handles GET /submissions/patient.
//
// @Summary      List the caller's submissions, newest first
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   submissionResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /submissions/patient [get]
func (h *SubmissionHandler) ListMine(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	subs, err := h.service.ListForPatient(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSubmissionList(subs))
}

// ListAll handles GET /submissions/admin.
//
// @Summary      List every submission with its owner, newest first
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   submissionResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /submissions/admin [get]
func (h *SubmissionHandler) ListAll(c echo.Context) error {
	details, err := h.service.ListForAdmin(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDetailList(details))
}

// Get handles GET /submissions/:id. Patients may only read their own.
//
// @Summary      Get a submission
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Submission id"
// @Success      200  {object}  submissionResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /submissions/{id} [get]
func (h *SubmissionHandler) Get(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	detail, err := h.service.GetByID(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSubmissionResponse(detail.Submission, detail.Patient))
}

// Review handles PUT /submissions/:id/review.
//
// @Summary      Review a submission
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Submission id"
// @Param        body  body      reviewRequest  true  "Review with base64 data URLs"
// @Success      200   {object}  submissionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /submissions/{id}/review [put]
func (h *SubmissionHandler) Review(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	annotated, err := decodeDataURL(req.AnnotatedImageDataURL, "image/png")
	if err != nil {
		return err
	}
	if annotated == nil {
		return domain.Validation("annotated image is required")
	}
	report, err := decodeDataURL(req.PDFDataURL, domain.MimePDF)
	if err != nil {
		return err
	}

	sub, err := h.service.Review(c.Request().Context(), ports.ReviewSubmissionInput{
		SubmissionID:   c.Param("id"),
		ReviewerID:     identity.UserID,
		AdminNotes:     req.AdminNotes,
		AnnotatedImage: *annotated,
		PDFReport:      report,
	})
	if err != nil {
		return err
	}

	metrics.SubmissionsReviewedTotal.WithLabelValues(strconv.FormatBool(report != nil)).Inc()
	return c.JSON(http.StatusOK, toSubmissionResponse(sub, nil))
}

// Events handles GET /submissions/:id/events.
//
// @Summary      Audit trail of a submission
// @Tags         submissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Submission id"
// @Success      200  {array}   submissionEventResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /submissions/{id}/events [get]
func (h *SubmissionHandler) Events(c echo.Context) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}

	events, err := h.service.Events(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventList(events))
}

// readFormFile reads an uploaded part. The declared content type is trusted
// when it names an image; otherwise the bytes are sniffed.
func readFormFile(fh *multipart.FileHeader) (domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, echo.NewHTTPError(http.StatusBadRequest, "unreadable image file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, echo.NewHTTPError(http.StatusBadRequest, "unreadable image file")
	}

	mime := domain.NormalizeMime(fh.Header.Get(echo.HeaderContentType))
	if !domain.IsAcceptedImage(mime) {
		mime = domain.NormalizeMime(mimetype.Detect(data).String())
	}
	return domain.Upload{Data: data, MimeType: mime, Filename: fh.Filename}, nil
}
