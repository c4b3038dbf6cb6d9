package store

import (
	"context"

	"github.com/phrazzld/irmock-api/internal/domain"
)

// SubmissionStore defines the interface for submission persistence.
// The store is the only owner of the submission collection: callers receive
// copies and mutate state exclusively through UpdateStatus.
// Version: 1.0
type SubmissionStore interface {
	// Create saves a new pending submission and persists the collection once.
	// Returns ErrSubmissionExists if the image ID is already in use.
	// Returns validation errors from the domain Submission if data is invalid.
	Create(ctx context.Context, submission *domain.Submission) error

	// Get retrieves a submission by task UUID and image ID. Both must match:
	// an image ID that belongs to another task yields ErrSubmissionNotFound.
	Get(ctx context.Context, taskUUID, imageID string) (*domain.Submission, error)

	// GetByID retrieves a submission by image ID alone.
	// Returns ErrSubmissionNotFound if the submission does not exist.
	GetByID(ctx context.Context, imageID string) (*domain.Submission, error)

	// UpdateStatus moves a submission to a terminal status and re-persists.
	// Repeating the current terminal status is a successful no-op.
	// Returns ErrSubmissionNotFound or ErrInvalidTransition on failure.
	UpdateStatus(
		ctx context.Context,
		imageID string,
		status domain.SubmissionStatus,
		result *domain.Result,
	) error

	// ListByStatus retrieves all submissions with the given status in creation order.
	ListByStatus(ctx context.Context, status domain.SubmissionStatus) ([]*domain.Submission, error)

	// Count returns the number of stored submissions.
	Count(ctx context.Context) (int, error)
}
