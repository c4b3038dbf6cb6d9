package service

import (
	"context"
	"sync"

	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/store"
	"github.com/phrazzld/irmock-api/internal/task"
)

// fakeRegistry is an in-memory TaskRegistry over a fixed task list.
type fakeRegistry struct {
	tasks []domain.Task
}

func newFakeRegistry(uuids ...string) *fakeRegistry {
	r := &fakeRegistry{}
	for _, id := range uuids {
		r.tasks = append(r.tasks, domain.Task{UUID: id, Name: "task " + id})
	}
	return r
}

func (r *fakeRegistry) Exists(_ context.Context, taskUUID string) bool {
	for _, t := range r.tasks {
		if t.UUID == taskUUID {
			return true
		}
	}
	return false
}

func (r *fakeRegistry) Get(ctx context.Context, taskUUID string) (*domain.Task, error) {
	for _, t := range r.tasks {
		if t.UUID == taskUUID {
			t := t
			return &t, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

func (r *fakeRegistry) List(_ context.Context, offset, limit int) store.Page[domain.Task] {
	end := offset + limit
	if end > len(r.tasks) {
		end = len(r.tasks)
	}
	if offset > end {
		offset = end
	}
	return store.Page[domain.Task]{
		Items:   append([]domain.Task{}, r.tasks[offset:end]...),
		Total:   len(r.tasks),
		Limit:   limit,
		Offset:  offset,
		HasMore: end < len(r.tasks),
	}
}

func (r *fakeRegistry) Len() int { return len(r.tasks) }

// mockSubmissionStore is an in-memory SubmissionStore whose methods can be
// overridden per test.
type mockSubmissionStore struct {
	mu    sync.Mutex
	items map[string]*domain.Submission
	order []string

	CreateFn       func(ctx context.Context, s *domain.Submission) error
	GetFn          func(ctx context.Context, taskUUID, imageID string) (*domain.Submission, error)
	UpdateStatusFn func(ctx context.Context, imageID string, status domain.SubmissionStatus, result *domain.Result) error
}

func newMockSubmissionStore() *mockSubmissionStore {
	return &mockSubmissionStore{items: make(map[string]*domain.Submission)}
}

func (m *mockSubmissionStore) Create(ctx context.Context, s *domain.Submission) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, s); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[s.ImageID]; ok {
		return store.ErrSubmissionExists
	}
	m.items[s.ImageID] = s.Clone()
	m.order = append(m.order, s.ImageID)
	return nil
}

func (m *mockSubmissionStore) Get(ctx context.Context, taskUUID, imageID string) (*domain.Submission, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, taskUUID, imageID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[imageID]
	if !ok || s.TaskUUID != taskUUID {
		return nil, store.ErrSubmissionNotFound
	}
	return s.Clone(), nil
}

func (m *mockSubmissionStore) GetByID(_ context.Context, imageID string) (*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[imageID]
	if !ok {
		return nil, store.ErrSubmissionNotFound
	}
	return s.Clone(), nil
}

func (m *mockSubmissionStore) UpdateStatus(
	ctx context.Context,
	imageID string,
	status domain.SubmissionStatus,
	result *domain.Result,
) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, imageID, status, result)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[imageID]
	if !ok {
		return store.ErrSubmissionNotFound
	}
	s.Status = status
	s.Result = result.Clone()
	return nil
}

func (m *mockSubmissionStore) ListByStatus(_ context.Context, status domain.SubmissionStatus) ([]*domain.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Submission
	for _, id := range m.order {
		if m.items[id].Status == status {
			out = append(out, m.items[id].Clone())
		}
	}
	return out, nil
}

func (m *mockSubmissionStore) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func (m *mockSubmissionStore) status(imageID string) domain.SubmissionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.items[imageID]; ok {
		return s.Status
	}
	return ""
}

// mockScheduler records scheduling requests.
type mockScheduler struct {
	mu      sync.Mutex
	single  []task.CompletionRequest
	batches [][]task.CompletionRequest
	err     error
}

func (m *mockScheduler) ScheduleCompletion(_ context.Context, req task.CompletionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.single = append(m.single, req)
	return nil
}

func (m *mockScheduler) ScheduleCompletions(_ context.Context, reqs []task.CompletionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, reqs)
	return nil
}

// countingRecorder records SubmissionCreated calls by shape.
type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) SubmissionCreated(shape string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[shape] += n
}

// fakeCatalog is a fixed CatalogStore.
type fakeCatalog []domain.CatalogItem

func (c fakeCatalog) ListItems(context.Context) []domain.CatalogItem { return c }
