package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/events"
	"github.com/phrazzld/irmock-api/internal/store"
)

// Common errors
var (
	ErrNilRepository = errors.New("submission repository cannot be nil")
	ErrNilGenerator  = errors.New("result generator cannot be nil")
	ErrEmptyImageID  = errors.New("image ID cannot be empty")
)

// SubmissionRepository is the subset of the submission store used to
// finalize submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, imageID string) (*domain.Submission, error)
	UpdateStatus(
		ctx context.Context,
		imageID string,
		status domain.SubmissionStatus,
		result *domain.Result,
	) error
}

// CompletionRequest identifies a submission to finalize and where to report it.
type CompletionRequest struct {
	ImageID     string `json:"image_id"`
	TaskUUID    string `json:"task_uuid"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// CompletionTask implements the Task interface for moving one pending
// submission to its terminal status.
type CompletionTask struct {
	id        uuid.UUID
	request   CompletionRequest
	repo      SubmissionRepository
	generator ResultGenerator
	emitter   events.EventEmitter
	observer  Observer
	now       func() time.Time
	logger    *slog.Logger

	mu     sync.Mutex
	status TaskStatus
}

// ID returns the task's unique identifier
func (t *CompletionTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *CompletionTask) Type() string {
	return TaskTypeSubmissionCompletion
}

// Payload returns the completion request as JSON
func (t *CompletionTask) Payload() []byte {
	data, err := json.Marshal(t.request)
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *CompletionTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *CompletionTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

// Execute finalizes the submission. A submission that no longer exists or is
// already terminal is left alone, and so is one whose context is canceled
// before the status change. A generator failure marks the submission failed;
// otherwise it is completed with the generated result. Subscribers are
// notified after the status change is persisted.
func (t *CompletionTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	submission, err := t.repo.GetByID(ctx, t.request.ImageID)
	if err != nil {
		if store.IsNotFoundError(err) {
			t.logger.Info("submission no longer exists, skipping completion")
			t.setStatus(TaskStatusCompleted)
			return nil
		}
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("failed to load submission: %w", err)
	}

	if submission.Status.IsTerminal() {
		t.logger.Debug("submission already finalized", "status", submission.Status)
		t.setStatus(TaskStatusCompleted)
		return nil
	}

	status := domain.SubmissionStatusCompleted
	result, genErr := t.generator.Generate(ctx, submission)
	if ctx.Err() != nil {
		// Interrupted by shutdown: the submission stays pending for recovery.
		t.logger.Info("completion interrupted, leaving submission pending", "error", ctx.Err())
		t.setStatus(TaskStatusPending)
		return nil
	}
	if genErr == nil {
		genErr = result.Validate()
	}
	if genErr != nil {
		t.logger.Warn("result generation failed, marking submission failed", "error", genErr)
		status = domain.SubmissionStatusFailed
		result = nil
	}

	if err := t.repo.UpdateStatus(ctx, t.request.ImageID, status, result); err != nil {
		if errors.Is(err, store.ErrInvalidTransition) || store.IsNotFoundError(err) {
			t.logger.Info("submission changed concurrently, skipping completion", "error", err)
			t.setStatus(TaskStatusCompleted)
			return nil
		}
		t.setStatus(TaskStatusFailed)
		return fmt.Errorf("failed to update submission status: %w", err)
	}

	now := t.now()
	t.observer.CompletionRecorded(status, now.Sub(submission.CreatedAt))
	t.logger.Info("submission finalized", "status", status)

	final := submission.Clone()
	if err := final.Transition(status, result, now); err != nil && !errors.Is(err, domain.ErrAlreadyInState) {
		t.logger.Error("failed to build event snapshot", "error", err)
	}
	t.emit(ctx, final)

	t.setStatus(TaskStatusCompleted)
	return nil
}

func (t *CompletionTask) emit(ctx context.Context, submission *domain.Submission) {
	if t.emitter == nil {
		return
	}

	eventType := events.TypeSubmissionCompleted
	if submission.Status == domain.SubmissionStatusFailed {
		eventType = events.TypeSubmissionFailed
	}

	event, err := events.NewEvent(eventType, events.SubmissionPayload{
		Submission:  submission,
		CallbackURL: t.request.CallbackURL,
	})
	if err != nil {
		t.logger.Error("failed to create submission event", "error", err)
		return
	}

	if err := t.emitter.EmitEvent(ctx, event); err != nil {
		t.logger.Warn("submission event handler failed", "event_type", eventType, "error", err)
	}
}

// CompletionTaskFactory creates CompletionTask instances sharing the same
// collaborators.
type CompletionTaskFactory struct {
	repo      SubmissionRepository
	generator ResultGenerator
	emitter   events.EventEmitter
	observer  Observer
	now       func() time.Time
	logger    *slog.Logger
}

// NewCompletionTaskFactory creates a new factory for CompletionTasks.
// The emitter and observer are optional.
func NewCompletionTaskFactory(
	repo SubmissionRepository,
	generator ResultGenerator,
	emitter events.EventEmitter,
	observer Observer,
	logger *slog.Logger,
) (*CompletionTaskFactory, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CompletionTaskFactory{
		repo:      repo,
		generator: generator,
		emitter:   emitter,
		observer:  observer,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}, nil
}

// CreateTask creates a new CompletionTask for the given request.
func (f *CompletionTaskFactory) CreateTask(req CompletionRequest) (*CompletionTask, error) {
	if strings.TrimSpace(req.ImageID) == "" {
		return nil, ErrEmptyImageID
	}

	id := uuid.New()
	return &CompletionTask{
		id:        id,
		request:   req,
		repo:      f.repo,
		generator: f.generator,
		emitter:   f.emitter,
		observer:  f.observer,
		now:       f.now,
		logger: f.logger.With(
			"task_id", id,
			"task_type", TaskTypeSubmissionCompletion,
			"image_id", req.ImageID,
			"task_uuid", req.TaskUUID,
		),
		status: TaskStatusPending,
	}, nil
}
