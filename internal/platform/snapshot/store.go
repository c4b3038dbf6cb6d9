package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/platform/logger"
	"github.com/phrazzld/irmock-api/internal/store"
)

// Store implements store.SubmissionStore on top of a JSON file.
//
// Mutations hold the write lock for the whole change-and-persist step, so
// writes are serialized and readers never observe a record that was not
// persisted. If the file write fails the in-memory change is rolled back.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
	write  func(path string, data []byte) error

	mu          sync.RWMutex
	submissions []*domain.Submission
	index       map[string]int
}

var _ store.SubmissionStore = (*Store)(nil)

// Open loads the snapshot at path. A missing file yields an empty store;
// the file is created on the first mutation.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		path:   path,
		logger: logger.With("component", "snapshot_store"),
		now:    func() time.Time { return time.Now().UTC() },
		write:  writeFileAtomic,
		index:  make(map[string]int),

		submissions: make([]*domain.Submission, 0),
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("snapshot file not found, starting empty", "path", s.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: failed to read snapshot: %v", store.ErrPersistence, err)
	}

	var records []*domain.Submission
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &records); err != nil {
			return fmt.Errorf("%w: failed to decode snapshot: %v", store.ErrPersistence, err)
		}
	}

	for i, rec := range records {
		if rec == nil {
			continue
		}
		if err := rec.Validate(); err != nil {
			s.logger.Warn("skipping invalid snapshot record", "position", i, "error", err)
			continue
		}
		if _, dup := s.index[rec.ImageID]; dup {
			s.logger.Warn("skipping duplicate snapshot record", "position", i, "image_id", rec.ImageID)
			continue
		}
		s.index[rec.ImageID] = len(s.submissions)
		s.submissions = append(s.submissions, rec)
	}

	s.logger.Info("loaded submission snapshot", "path", s.path, "submission_count", len(s.submissions))
	return nil
}

// Create implements store.SubmissionStore.
func (s *Store) Create(ctx context.Context, submission *domain.Submission) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := submission.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[submission.ImageID]; exists {
		return store.ErrSubmissionExists
	}

	s.index[submission.ImageID] = len(s.submissions)
	s.submissions = append(s.submissions, submission.Clone())

	if err := s.persistLocked(); err != nil {
		s.submissions = s.submissions[:len(s.submissions)-1]
		delete(s.index, submission.ImageID)

		log.Error("failed to persist new submission",
			"image_id", submission.ImageID,
			"error", err)
		return store.NewStoreError("submission", "create", "failed to persist snapshot", err)
	}

	log.Debug("submission created", "image_id", submission.ImageID, "task_uuid", submission.TaskUUID)
	return nil
}

// Get implements store.SubmissionStore.
func (s *Store) Get(_ context.Context, taskUUID, imageID string) (*domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[imageID]
	if !ok || s.submissions[i].TaskUUID != taskUUID {
		return nil, store.ErrSubmissionNotFound
	}
	return s.submissions[i].Clone(), nil
}

// GetByID implements store.SubmissionStore.
func (s *Store) GetByID(_ context.Context, imageID string) (*domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[imageID]
	if !ok {
		return nil, store.ErrSubmissionNotFound
	}
	return s.submissions[i].Clone(), nil
}

// UpdateStatus implements store.SubmissionStore.
func (s *Store) UpdateStatus(
	ctx context.Context,
	imageID string,
	status domain.SubmissionStatus,
	result *domain.Result,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[imageID]
	if !ok {
		return store.ErrSubmissionNotFound
	}

	current := s.submissions[i]
	previous := current.Clone()

	if err := current.Transition(status, result, s.now()); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyInState):
			return nil
		case errors.Is(err, domain.ErrInvalidResult):
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		default:
			return fmt.Errorf("%w: %s -> %s", store.ErrInvalidTransition, previous.Status, status)
		}
	}

	if err := s.persistLocked(); err != nil {
		s.submissions[i] = previous

		log.Error("failed to persist status update",
			"image_id", imageID,
			"status", status,
			"error", err)
		return store.NewStoreError("submission", "update_status", "failed to persist snapshot", err)
	}

	log.Debug("submission status updated", "image_id", imageID, "status", status)
	return nil
}

// ListByStatus implements store.SubmissionStore.
func (s *Store) ListByStatus(_ context.Context, status domain.SubmissionStatus) ([]*domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Submission, 0)
	for _, sub := range s.submissions {
		if sub.Status == status {
			out = append(out, sub.Clone())
		}
	}
	return out, nil
}

// Count implements store.SubmissionStore.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.submissions), nil
}

// persistLocked writes the full collection. The caller must hold s.mu.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.submissions, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode snapshot: %v", store.ErrPersistence, err)
	}
	if err := s.write(s.path, data); err != nil {
		return fmt.Errorf("%w: %v", store.ErrPersistence, err)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so a crash never leaves a half-written snapshot.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
