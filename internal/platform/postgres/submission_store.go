package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/irmock-api/internal/domain"
	"github.com/phrazzld/irmock-api/internal/platform/logger"
	"github.com/phrazzld/irmock-api/internal/store"
)

const submissionColumns = `image_id, task_uuid, status, result, created_at, updated_at`

// PostgresSubmissionStore implements store.SubmissionStore on PostgreSQL.
// Status transitions are guarded in SQL (`WHERE status = 'pending'`), so
// concurrent completions of the same submission cannot both succeed.
type PostgresSubmissionStore struct {
	db     DBTX
	logger *slog.Logger
	now    func() time.Time
}

var _ store.SubmissionStore = (*PostgresSubmissionStore)(nil)

// NewPostgresSubmissionStore creates a store on top of a connection or transaction.
// If logger is nil, a default logger will be used.
func NewPostgresSubmissionStore(db DBTX, logger *slog.Logger) *PostgresSubmissionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSubmissionStore{
		db:     db,
		logger: logger.With(slog.String("component", "submission_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create implements store.SubmissionStore.
func (s *PostgresSubmissionStore) Create(ctx context.Context, submission *domain.Submission) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := submission.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := encodeResult(submission.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO submissions (image_id, task_uuid, status, result, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		submission.ImageID,
		submission.TaskUUID,
		string(submission.Status),
		result,
		submission.CreatedAt,
		submission.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrSubmissionExists, err)
		}
		log.Error("failed to create submission",
			slog.String("image_id", submission.ImageID),
			slog.String("error", err.Error()))
		return store.NewStoreError("submission", "create", "insert failed", MapError(err))
	}

	log.Debug("submission created",
		slog.String("image_id", submission.ImageID),
		slog.String("task_uuid", submission.TaskUUID))
	return nil
}

// Get implements store.SubmissionStore.
func (s *PostgresSubmissionStore) Get(ctx context.Context, taskUUID, imageID string) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE image_id = $1 AND task_uuid = $2`
	return s.getOne(ctx, query, imageID, taskUUID)
}

// GetByID implements store.SubmissionStore.
func (s *PostgresSubmissionStore) GetByID(ctx context.Context, imageID string) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE image_id = $1`
	return s.getOne(ctx, query, imageID)
}

func (s *PostgresSubmissionStore) getOne(ctx context.Context, query string, args ...any) (*domain.Submission, error) {
	sub, err := scanSubmission(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSubmissionNotFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load submission",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("submission", "get", "query failed", MapError(err))
	}
	return sub, nil
}

// UpdateStatus implements store.SubmissionStore.
func (s *PostgresSubmissionStore) UpdateStatus(
	ctx context.Context,
	imageID string,
	status domain.SubmissionStatus,
	result *domain.Result,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	// Run the requested change through the domain state machine first, so
	// invalid targets and results are rejected without touching the database.
	probe := &domain.Submission{ImageID: imageID, Status: domain.SubmissionStatusPending}
	if err := probe.Transition(status, result, now); err != nil {
		if errors.Is(err, domain.ErrInvalidResult) {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		return fmt.Errorf("%w: pending -> %s", store.ErrInvalidTransition, status)
	}

	encoded, err := encodeResult(probe.Result)
	if err != nil {
		return err
	}

	query := `
		UPDATE submissions
		SET status = $2, result = $3::jsonb, updated_at = $4
		WHERE image_id = $1 AND status = 'pending'
	`
	res, err := s.db.ExecContext(ctx, query, imageID, string(status), encoded, now)
	if err != nil {
		log.Error("failed to update submission status",
			slog.String("image_id", imageID),
			slog.String("error", err.Error()))
		return store.NewStoreError("submission", "update_status", "update failed", MapError(err))
	}

	if err := CheckRowsAffected(res, "submission"); err == nil {
		log.Debug("submission status updated",
			slog.String("image_id", imageID),
			slog.String("status", string(status)))
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.NewStoreError("submission", "update_status", "update failed", err)
	}

	// Nothing matched: either the submission is missing or it already left pending.
	current, err := s.GetByID(ctx, imageID)
	if err != nil {
		return err
	}
	if current.Status == status {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", store.ErrInvalidTransition, current.Status, status)
}

// ListByStatus implements store.SubmissionStore.
func (s *PostgresSubmissionStore) ListByStatus(
	ctx context.Context,
	status domain.SubmissionStatus,
) ([]*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE status = $1 ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, store.NewStoreError("submission", "list_by_status", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	out := make([]*domain.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, store.NewStoreError("submission", "list_by_status", "scan failed", MapError(err))
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("submission", "list_by_status", "iteration failed", MapError(err))
	}
	return out, nil
}

// Count implements store.SubmissionStore.
func (s *PostgresSubmissionStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions`).Scan(&n); err != nil {
		return 0, store.NewStoreError("submission", "count", "query failed", MapError(err))
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	var (
		sub    domain.Submission
		status string
		raw    []byte
	)
	if err := row.Scan(&sub.ImageID, &sub.TaskUUID, &status, &raw, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	sub.Status = domain.SubmissionStatus(status)
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.UpdatedAt = sub.UpdatedAt.UTC()

	if len(raw) > 0 {
		var result domain.Result
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("failed to decode result: %w", err)
		}
		sub.Result = &result
	}
	return &sub, nil
}

// encodeResult returns the JSON text for the result column, or nil for NULL.
func encodeResult(result *domain.Result) (any, error) {
	if result == nil {
		return nil, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode result: %v", store.ErrInvalidEntity, err)
	}
	return string(data), nil
}
