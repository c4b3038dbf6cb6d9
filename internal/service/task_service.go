package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/store"
)

// Pagination bounds used when none are configured.
const (
	DefaultPageLimit = 10
	DefaultMaxLimit  = 100
)

// TaskService provides read access to recognition tasks.
type TaskService interface {
	// ListTasks returns one page of tasks. A non-positive limit selects the
	// default page size, a limit above the maximum is capped and a negative
	// offset is treated as zero.
	ListTasks(ctx context.Context, offset, limit int) store.Page[domain.Task]

	// ListAllTasks returns every task in registry order.
	ListAllTasks(ctx context.Context) []domain.Task

	// TaskExists reports whether the task is registered.
	TaskExists(ctx context.Context, taskUUID string) bool
}

type taskServiceImpl struct {
	registry     store.TaskRegistry
	defaultLimit int
	maxLimit     int
	logger       *slog.Logger
}

// NewTaskService creates a TaskService. Non-positive limits select the
// package defaults.
func NewTaskService(
	registry store.TaskRegistry,
	defaultLimit, maxLimit int,
	logger *slog.Logger,
) (TaskService, error) {
	if registry == nil {
		return nil, domain.NewValidationError("registry", "cannot be nil", domain.ErrValidation)
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageLimit
	}
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		registry:     registry,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger.With(slog.String("component", "task_service")),
	}, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, offset, limit int) store.Page[domain.Task] {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.registry.List(ctx, offset, limit)
}

// ListAllTasks implements TaskService.ListAllTasks
func (s *taskServiceImpl) ListAllTasks(ctx context.Context) []domain.Task {
	return s.registry.List(ctx, 0, s.registry.Len()).Items
}

// TaskExists implements TaskService.TaskExists
func (s *taskServiceImpl) TaskExists(ctx context.Context, taskUUID string) bool {
	return s.registry.Exists(ctx, taskUUID)
}
