package domain

import "time"

// Task is a recognition task images are submitted against. Tasks are loaded
// from fixtures at startup and never mutated afterwards.
type Task struct {
	UUID             string    `json:"uuid"`
	Name             string    `json:"name"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	ComputeRealogram bool      `json:"compute_realogram"`
	ComputeShares    bool      `json:"compute_shares"`
}

// Validate checks that the task can be indexed by the registry.
func (t Task) Validate() error {
	if t.UUID == "" {
		return NewValidationError("uuid", "is required", ErrInvalidID)
	}
	return nil
}

// CatalogItem is an opaque catalog fixture record. The mock serves catalog
// items exactly as loaded, so the shape is left to the fixture file.
type CatalogItem map[string]any
