package store

import (
	"context"

	"github.com/phrazzld/irmock-api/internal/domain"
)

// Page is one window of an ordered listing.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// TaskRegistry provides read-only access to the recognition tasks.
// Implementations must keep a stable insertion order so that pagination is
// consistent across calls.
type TaskRegistry interface {
	// Exists reports whether a task with the given UUID is registered.
	Exists(ctx context.Context, taskUUID string) bool

	// Get returns the task with the given UUID.
	// Returns ErrTaskNotFound if the task does not exist.
	Get(ctx context.Context, taskUUID string) (*domain.Task, error)

	// List returns the window [offset, offset+limit) of the registry.
	// Offset is clamped to [0, len]; limit must already be positive.
	List(ctx context.Context, offset, limit int) Page[domain.Task]

	// Len returns the number of registered tasks.
	Len() int
}

// CatalogStore provides read-only access to the catalog fixture.
type CatalogStore interface {
	// ListItems returns every catalog item in fixture order.
	ListItems(ctx context.Context) []domain.CatalogItem
}
