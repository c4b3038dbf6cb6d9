package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/platform/logger"
	"github.com/phrazzld/irmock-api/internal/store"
	"github.com/phrazzld/irmock-api/internal/task"
)

// Submission shapes reported to the recorder.
const (
	ShapeBatch  = "batch"
	ShapeSingle = "single"
)

// maxIDAttempts bounds identifier regeneration on collisions.
const maxIDAttempts = 3

// CompletionScheduler arms deferred completions for new submissions.
type CompletionScheduler interface {
	ScheduleCompletion(ctx context.Context, req task.CompletionRequest) error
	ScheduleCompletions(ctx context.Context, reqs []task.CompletionRequest) error
}

// SubmissionRecorder counts accepted submissions, typically to feed metrics.
type SubmissionRecorder interface {
	SubmissionCreated(shape string, n int)
}

type nopRecorder struct{}

func (nopRecorder) SubmissionCreated(string, int) {}

// SubmitOptions carries the optional parameters of a submission request.
type SubmitOptions struct {
	// CallbackURL is notified, best effort, when the submission completes.
	CallbackURL string
}

// SubmissionService accepts image submissions and serves their state.
type SubmissionService interface {
	// SubmitImage records one pending submission and schedules its completion.
	// Returns store.ErrTaskNotFound, without touching the store, if the task is unknown.
	SubmitImage(ctx context.Context, taskUUID string, opts SubmitOptions) (*domain.Submission, error)

	// SubmitImages records count pending submissions and schedules their
	// completions with staggered delays.
	SubmitImages(ctx context.Context, taskUUID string, count int, opts SubmitOptions) ([]*domain.Submission, error)

	// TaskExists reports whether submissions can be made against taskUUID.
	TaskExists(ctx context.Context, taskUUID string) bool

	// GetSubmission returns the submission with the given id under the given task.
	// Returns store.ErrSubmissionNotFound if either does not match.
	GetSubmission(ctx context.Context, taskUUID, imageID string) (*domain.Submission, error)
}

// submissionServiceImpl implements the SubmissionService interface
type submissionServiceImpl struct {
	tasks     store.TaskRegistry
	store     store.SubmissionStore
	scheduler CompletionScheduler
	recorder  SubmissionRecorder
	newID     func() string
	now       func() time.Time
	logger    *slog.Logger
}

// NewSubmissionService creates a new SubmissionService.
// It returns an error if any of the required dependencies are nil.
// A nil recorder discards counts.
func NewSubmissionService(
	tasks store.TaskRegistry,
	submissions store.SubmissionStore,
	scheduler CompletionScheduler,
	recorder SubmissionRecorder,
	logger *slog.Logger,
) (SubmissionService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if submissions == nil {
		return nil, domain.NewValidationError("submissions", "cannot be nil", domain.ErrValidation)
	}
	if scheduler == nil {
		return nil, domain.NewValidationError("scheduler", "cannot be nil", domain.ErrValidation)
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &submissionServiceImpl{
		tasks:     tasks,
		store:     submissions,
		scheduler: scheduler,
		recorder:  recorder,
		newID:     NewImageID,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.With(slog.String("component", "submission_service")),
	}, nil
}

// NewImageID returns "img" followed by 32 lowercase hex characters.
func NewImageID() string {
	return "img" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// SubmitImage implements SubmissionService.SubmitImage
func (s *submissionServiceImpl) SubmitImage(
	ctx context.Context,
	taskUUID string,
	opts SubmitOptions,
) (*domain.Submission, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !s.tasks.Exists(ctx, taskUUID) {
		log.Debug("submission rejected: unknown task", slog.String("task_uuid", taskUUID))
		return nil, store.ErrTaskNotFound
	}

	submission, err := s.create(ctx, taskUUID)
	if err != nil {
		return nil, err
	}

	req := task.CompletionRequest{
		ImageID:     submission.ImageID,
		TaskUUID:    taskUUID,
		CallbackURL: opts.CallbackURL,
	}
	if err := s.scheduler.ScheduleCompletion(ctx, req); err != nil {
		s.markFailed(ctx, submission.ImageID, err)
		return nil, NewSubmissionServiceError("submit_image", "failed to schedule completion", err)
	}

	s.recorder.SubmissionCreated(ShapeSingle, 1)
	log.Info("image submitted",
		slog.String("task_uuid", taskUUID),
		slog.String("image_id", submission.ImageID),
		slog.Bool("callback", opts.CallbackURL != ""))

	return submission, nil
}

// SubmitImages implements SubmissionService.SubmitImages
func (s *submissionServiceImpl) SubmitImages(
	ctx context.Context,
	taskUUID string,
	count int,
	opts SubmitOptions,
) ([]*domain.Submission, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if count <= 0 {
		return nil, ErrInvalidCount
	}
	if !s.tasks.Exists(ctx, taskUUID) {
		log.Debug("submission rejected: unknown task", slog.String("task_uuid", taskUUID))
		return nil, store.ErrTaskNotFound
	}

	submissions := make([]*domain.Submission, 0, count)
	reqs := make([]task.CompletionRequest, 0, count)
	var createErr error
	for i := 0; i < count; i++ {
		submission, err := s.create(ctx, taskUUID)
		if err != nil {
			createErr = err
			break
		}
		submissions = append(submissions, submission)
		reqs = append(reqs, task.CompletionRequest{
			ImageID:     submission.ImageID,
			TaskUUID:    taskUUID,
			CallbackURL: opts.CallbackURL,
		})
	}

	// Submissions persisted before a failure still get their completions,
	// otherwise they would stay pending forever.
	if len(reqs) > 0 {
		if err := s.scheduler.ScheduleCompletions(ctx, reqs); err != nil {
			for _, req := range reqs {
				s.markFailed(ctx, req.ImageID, err)
			}
			return nil, NewSubmissionServiceError("submit_images", "failed to schedule completions", err)
		}
		s.recorder.SubmissionCreated(ShapeBatch, len(reqs))
	}

	if createErr != nil {
		log.Error("batch submission aborted",
			slog.String("task_uuid", taskUUID),
			slog.Int("requested", count),
			slog.Int("created", len(submissions)),
			slog.Any("created_ids", imageIDs(submissions)),
			slog.String("error", createErr.Error()))
		return nil, createErr
	}

	log.Info("images submitted",
		slog.String("task_uuid", taskUUID),
		slog.Int("count", count),
		slog.Bool("callback", opts.CallbackURL != ""))

	return submissions, nil
}

// TaskExists implements SubmissionService.TaskExists
func (s *submissionServiceImpl) TaskExists(ctx context.Context, taskUUID string) bool {
	return s.tasks.Exists(ctx, taskUUID)
}

func imageIDs(submissions []*domain.Submission) []string {
	ids := make([]string, len(submissions))
	for i, sub := range submissions {
		ids[i] = sub.ImageID
	}
	return ids
}

// GetSubmission implements SubmissionService.GetSubmission
func (s *submissionServiceImpl) GetSubmission(
	ctx context.Context,
	taskUUID, imageID string,
) (*domain.Submission, error) {
	submission, err := s.store.Get(ctx, taskUUID, imageID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrSubmissionNotFound
		}
		return nil, NewSubmissionServiceError("get_submission", "failed to load submission", err)
	}
	return submission, nil
}

// create persists one pending submission, regenerating the identifier on collisions.
func (s *submissionServiceImpl) create(ctx context.Context, taskUUID string) (*domain.Submission, error) {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		submission, err := domain.NewSubmission(s.newID(), taskUUID, s.now())
		if err != nil {
			return nil, NewSubmissionServiceError("create", "invalid submission", err)
		}

		err = s.store.Create(ctx, submission)
		if err == nil {
			return submission, nil
		}
		if !store.IsDuplicateError(err) {
			return nil, NewSubmissionServiceError("create", "failed to store submission", err)
		}

		logger.FromContextOrDefault(ctx, s.logger).Warn("submission id collision, regenerating",
			slog.String("image_id", submission.ImageID),
			slog.Int("attempt", attempt))
	}
	return nil, NewSubmissionServiceError("create", "id generation", ErrIDExhausted)
}

// markFailed moves a submission whose completion could not be scheduled to
// failed, so it never stays pending without a timer.
func (s *submissionServiceImpl) markFailed(ctx context.Context, imageID string, cause error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.store.UpdateStatus(ctx, imageID, domain.SubmissionStatusFailed, nil)
	if err != nil && !errors.Is(err, store.ErrInvalidTransition) {
		log.Error("failed to mark unscheduled submission as failed",
			slog.String("image_id", imageID),
			slog.String("error", err.Error()))
		return
	}
	log.Warn("submission marked failed: completion could not be scheduled",
		slog.String("image_id", imageID),
		slog.String("cause", cause.Error()))
}
