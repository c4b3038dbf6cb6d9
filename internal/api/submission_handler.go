package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/irmock-api/internal/api/shared"
	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/platform/logger"
	"github.com/phrazzld/irmock-api/internal/service"
	"github.com/phrazzld/irmock-api/internal/store"
)

// URL parameter names used by the submission routes.
const (
	ParamTaskUUID     = "task_uuid"
	ParamSubmissionID = "submission_id"
)

// DefaultMaxUploadBytes bounds a submission request body when no limit is configured.
const DefaultMaxUploadBytes int64 = 64 << 20

// SubmissionHandler handles image submission and result requests
type SubmissionHandler struct {
	submissionService service.SubmissionService
	maxUploadBytes    int64
	logger            *slog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler. A non-positive
// maxUploadBytes selects DefaultMaxUploadBytes.
func NewSubmissionHandler(
	submissionService service.SubmissionService,
	maxUploadBytes int64,
	logger *slog.Logger,
) *SubmissionHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionHandler{
		submissionService: submissionService,
		maxUploadBytes:    maxUploadBytes,
		logger:            logger.With(slog.String("component", "submission_handler")),
	}
}

// UploadImages handles POST /tasks/{task_uuid}/images. Every file part in
// the multipart body becomes one submission; the response is the array of
// new submission IDs.
func (h *SubmissionHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskUUID, err := pathParam(r, ParamTaskUUID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// Unknown tasks are rejected before the body is read.
	if !h.submissionService.TaskExists(r.Context(), taskUUID) {
		HandleAPIError(w, r, store.ErrTaskNotFound, "")
		return
	}

	count, callback, err := parseBatchUpload(w, r, h.maxUploadBytes)
	if err != nil {
		h.handleRequestError(w, r, err)
		return
	}

	submissions, err := h.submissionService.SubmitImages(r.Context(), taskUUID, count,
		service.SubmitOptions{CallbackURL: callback})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ids := make([]string, len(submissions))
	for i, s := range submissions {
		ids[i] = s.ImageID
	}

	log.Debug("batch upload accepted",
		slog.String("task_uuid", taskUUID),
		slog.Int("image_count", len(ids)))
	shared.RespondWithJSON(w, r, http.StatusOK, ids)
}

// SubmitImage handles POST /v2/image-recognition/tasks/{task_uuid}/images.
// It creates exactly one submission and returns the full record.
func (h *SubmissionHandler) SubmitImage(w http.ResponseWriter, r *http.Request) {
	taskUUID, err := pathParam(r, ParamTaskUUID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// Unknown tasks are rejected before the body is read.
	if !h.submissionService.TaskExists(r.Context(), taskUUID) {
		HandleAPIError(w, r, store.ErrTaskNotFound, "")
		return
	}

	callback, err := parseCallback(w, r, h.maxUploadBytes)
	if err != nil {
		h.handleRequestError(w, r, err)
		return
	}

	submission, err := h.submissionService.SubmitImage(r.Context(), taskUUID,
		service.SubmitOptions{CallbackURL: callback})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, submission)
}

// GetResult handles GET /tasks/{task_uuid}/results/{submission_id} and its
// v2 alias. Both identifiers must match the same submission.
func (h *SubmissionHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	taskUUID, err := pathParam(r, ParamTaskUUID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	submissionID, err := pathParam(r, ParamSubmissionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	submission, err := h.submissionService.GetSubmission(r.Context(), taskUUID, submissionID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, submission)
}

// handleRequestError reports body parsing failures, surfacing the field
// message of validation errors to the client.
func (h *SubmissionHandler) handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		HandleAPIError(w, r, err, verr.Message)
		return
	}
	HandleAPIError(w, r, err, "")
}
