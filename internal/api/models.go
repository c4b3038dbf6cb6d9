package api

import "github.com/phrazzld/irmock-api/internal/domain"

// ItemsResponse wraps an unpaginated listing as {"items": [...]}.
type ItemsResponse[T any] struct {
	Items []T `json:"items"`
}

// TaskPageResponse is the body of GET /tasks.
type TaskPageResponse struct {
	Items   []domain.Task `json:"items"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"has_more"`
}

// CallbackForm carries the optional callback target of a submission request.
type CallbackForm struct {
	Callback string `json:"callback" validate:"omitempty,max=2048,http_url"`
}
