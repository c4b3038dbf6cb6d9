package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/irmock-api/internal/domain"
)

// CompletionConfig controls when deferred completions fire.
type CompletionConfig struct {
	// Delay between submission creation and completion
	Delay time.Duration

	// Stagger is added per position within a batch
	Stagger time.Duration
}

// PendingLister lists submissions by status.
type PendingLister interface {
	ListByStatus(ctx context.Context, status domain.SubmissionStatus) ([]*domain.Submission, error)
}

// CompletionScheduler arranges for submissions to be finalized after the
// configured delay. Scheduling never blocks on the completion itself.
type CompletionScheduler struct {
	scheduler *Scheduler
	factory   *CompletionTaskFactory
	config    CompletionConfig
	now       func() time.Time
	logger    *slog.Logger
}

// NewCompletionScheduler creates a CompletionScheduler.
func NewCompletionScheduler(
	scheduler *Scheduler,
	factory *CompletionTaskFactory,
	config CompletionConfig,
	logger *slog.Logger,
) *CompletionScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompletionScheduler{
		scheduler: scheduler,
		factory:   factory,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger.With("component", "completion_scheduler"),
	}
}

// ScheduleCompletion finalizes one submission after the configured delay.
func (c *CompletionScheduler) ScheduleCompletion(ctx context.Context, req CompletionRequest) error {
	return c.ScheduleCompletionAfter(ctx, req, c.config.Delay)
}

// ScheduleCompletionAfter finalizes one submission after an explicit delay.
func (c *CompletionScheduler) ScheduleCompletionAfter(
	ctx context.Context,
	req CompletionRequest,
	delay time.Duration,
) error {
	task, err := c.factory.CreateTask(req)
	if err != nil {
		return fmt.Errorf("failed to create completion task: %w", err)
	}
	if err := c.scheduler.Schedule(task, delay); err != nil {
		return fmt.Errorf("failed to schedule completion: %w", err)
	}
	return nil
}

// ScheduleCompletions finalizes a batch of submissions, the i-th one after
// delay + i*stagger. Each submission gets its own independent timer.
func (c *CompletionScheduler) ScheduleCompletions(ctx context.Context, reqs []CompletionRequest) error {
	tasks := make([]Task, 0, len(reqs))
	for _, req := range reqs {
		task, err := c.factory.CreateTask(req)
		if err != nil {
			return fmt.Errorf("failed to create completion task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := c.scheduler.ScheduleBatch(tasks, c.config.Delay, c.config.Stagger); err != nil {
		return fmt.Errorf("failed to schedule completions: %w", err)
	}
	return nil
}

// Recover re-arms completions for submissions still pending in the store,
// typically after a restart. Each one fires when its original delay would
// have elapsed, or immediately if that moment has passed. Callback URLs are
// not persisted, so recovered completions do not notify.
func (c *CompletionScheduler) Recover(ctx context.Context, lister PendingLister) (int, error) {
	pending, err := lister.ListByStatus(ctx, domain.SubmissionStatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending submissions: %w", err)
	}

	now := c.now()
	recovered := 0
	for _, submission := range pending {
		delay := submission.CreatedAt.Add(c.config.Delay).Sub(now)
		req := CompletionRequest{ImageID: submission.ImageID, TaskUUID: submission.TaskUUID}
		if err := c.ScheduleCompletionAfter(ctx, req, delay); err != nil {
			c.logger.Error("failed to recover pending submission",
				"image_id", submission.ImageID,
				"error", err)
			continue
		}
		recovered++
	}

	c.logger.Info("recovered pending submissions",
		"pending_count", len(pending),
		"recovered_count", recovered)
	return recovered, nil
}
