package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/store"
)

// fakeRepo is a map-backed SubmissionRepository and PendingLister.
type fakeRepo struct {
	mu          sync.Mutex
	submissions map[string]*domain.Submission
	getErr      error
	updateErr   error
	updates     int
}

func newFakeRepo(subs ...*domain.Submission) *fakeRepo {
	r := &fakeRepo{submissions: make(map[string]*domain.Submission)}
	for _, s := range subs {
		r.submissions[s.ImageID] = s.Clone()
	}
	return r
}

func (r *fakeRepo) GetByID(ctx context.Context, imageID string) (*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	s, ok := r.submissions[imageID]
	if !ok {
		return nil, store.ErrSubmissionNotFound
	}
	return s.Clone(), nil
}

func (r *fakeRepo) UpdateStatus(
	ctx context.Context,
	imageID string,
	status domain.SubmissionStatus,
	result *domain.Result,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	s, ok := r.submissions[imageID]
	if !ok {
		return store.ErrSubmissionNotFound
	}
	err := s.Transition(status, result, time.Now().UTC())
	if errors.Is(err, domain.ErrAlreadyInState) {
		return nil
	}
	if err != nil {
		return store.ErrInvalidTransition
	}
	r.updates++
	return nil
}

func (r *fakeRepo) ListByStatus(ctx context.Context, status domain.SubmissionStatus) ([]*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Submission
	for _, s := range r.submissions {
		if s.Status == status {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

func (r *fakeRepo) status(imageID string) domain.SubmissionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submissions[imageID].Status
}

// generatorFunc adapts a function to ResultGenerator.
type generatorFunc func(ctx context.Context, s *domain.Submission) (*domain.Result, error)

func (f generatorFunc) Generate(ctx context.Context, s *domain.Submission) (*domain.Result, error) {
	return f(ctx, s)
}

// recordingObserver counts observer signals.
type recordingObserver struct {
	armed    atomic.Int32
	released atomic.Int32

	mu          sync.Mutex
	completions []domain.SubmissionStatus
}

func (o *recordingObserver) TimerArmed()    { o.armed.Add(1) }
func (o *recordingObserver) TimerReleased() { o.released.Add(1) }

func (o *recordingObserver) CompletionRecorded(status domain.SubmissionStatus, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completions = append(o.completions, status)
}

func (o *recordingObserver) recorded() []domain.SubmissionStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.SubmissionStatus(nil), o.completions...)
}

func pendingSubmission(imageID string, createdAt time.Time) *domain.Submission {
	return &domain.Submission{
		ImageID:   imageID,
		TaskUUID:  "task-1",
		Status:    domain.SubmissionStatusPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}
