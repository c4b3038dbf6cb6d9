package fixture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/store"
)

// TaskRegistry implements store.TaskRegistry over an immutable, ordered set
// of tasks. It is safe for concurrent use because it is never mutated after
// construction.
type TaskRegistry struct {
	tasks []domain.Task
	index map[string]int
}

var _ store.TaskRegistry = (*TaskRegistry)(nil)

// NewTaskRegistry builds a registry from tasks, keeping their order.
// Every task must be valid and UUIDs must be unique.
func NewTaskRegistry(tasks []domain.Task) (*TaskRegistry, error) {
	r := &TaskRegistry{
		tasks: make([]domain.Task, 0, len(tasks)),
		index: make(map[string]int, len(tasks)),
	}
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("task at position %d: %w", i, err)
		}
		if _, dup := r.index[t.UUID]; dup {
			return nil, fmt.Errorf("%w: task %s", store.ErrDuplicate, t.UUID)
		}
		r.index[t.UUID] = len(r.tasks)
		r.tasks = append(r.tasks, t)
	}
	return r, nil
}

// LoadTaskRegistry reads the tasks fixture at path. A missing file is an error.
func LoadTaskRegistry(path string, logger *slog.Logger) (*TaskRegistry, error) {
	tasks, err := readList[domain.Task](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks fixture: %w", err)
	}

	registry, err := NewTaskRegistry(tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to index tasks fixture: %w", err)
	}

	if logger != nil {
		logger.Info("loaded tasks fixture", "path", path, "task_count", registry.Len())
	}
	return registry, nil
}

// Exists implements store.TaskRegistry.
func (r *TaskRegistry) Exists(_ context.Context, taskUUID string) bool {
	_, ok := r.index[taskUUID]
	return ok
}

// Get implements store.TaskRegistry.
func (r *TaskRegistry) Get(_ context.Context, taskUUID string) (*domain.Task, error) {
	i, ok := r.index[taskUUID]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	t := r.tasks[i]
	return &t, nil
}

// List implements store.TaskRegistry. Offset is clamped to [0, len]; a
// non-positive limit returns everything from offset onwards.
func (r *TaskRegistry) List(_ context.Context, offset, limit int) store.Page[domain.Task] {
	total := len(r.tasks)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	if limit <= 0 {
		limit = total - offset
	}

	end := offset + limit
	if end > total || end < offset {
		end = total
	}

	items := make([]domain.Task, end-offset)
	copy(items, r.tasks[offset:end])

	return store.Page[domain.Task]{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: end < total,
	}
}

// Len implements store.TaskRegistry.
func (r *TaskRegistry) Len() int {
	return len(r.tasks)
}
