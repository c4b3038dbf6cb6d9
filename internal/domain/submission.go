package domain

import (
	"strings"
	"time"
)

// SubmissionStatus represents the processing state of an image submission
type SubmissionStatus string

// Possible submission status values
const (
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusCompleted SubmissionStatus = "completed"
	SubmissionStatusFailed    SubmissionStatus = "failed"
)

// IsValid reports whether s is a known status.
func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusCompleted, SubmissionStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionStatusCompleted || s == SubmissionStatusFailed
}

// RecognizedItem is one catalog item detected in an image.
type RecognizedItem struct {
	ItemID     string  `json:"item_id"`
	Confidence float64 `json:"confidence"`
}

// Result is the recognition payload attached to a completed submission.
type Result struct {
	RecognizedItems []RecognizedItem `json:"recognized_items"`
}

// Validate checks that the result carries at least one item and that every
// confidence lies in [0, 1].
func (r *Result) Validate() error {
	if r == nil || len(r.RecognizedItems) == 0 {
		return NewValidationError("recognized_items", "cannot be empty", ErrInvalidResult)
	}
	for _, item := range r.RecognizedItems {
		if strings.TrimSpace(item.ItemID) == "" {
			return NewValidationError("item_id", "is required", ErrInvalidResult)
		}
		if item.Confidence < 0 || item.Confidence > 1 {
			return NewValidationError("confidence", "must be between 0 and 1", ErrInvalidResult)
		}
	}
	return nil
}

// Submission is the processing record of a single submitted image.
// Result is non-nil if and only if Status is completed.
type Submission struct {
	ImageID   string           `json:"image_id"`
	TaskUUID  string           `json:"task_uuid"`
	Status    SubmissionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	Result    *Result          `json:"result"`
}

// NewSubmission creates a pending submission for the given task.
// Returns an error if validation fails.
func NewSubmission(imageID, taskUUID string, now time.Time) (*Submission, error) {
	s := &Submission{
		ImageID:   imageID,
		TaskUUID:  taskUUID,
		Status:    SubmissionStatusPending,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks the submission invariants.
func (s *Submission) Validate() error {
	if strings.TrimSpace(s.ImageID) == "" {
		return NewValidationError("image_id", "is required", ErrInvalidID)
	}
	if strings.TrimSpace(s.TaskUUID) == "" {
		return NewValidationError("task_uuid", "is required", ErrInvalidID)
	}
	if !s.Status.IsValid() {
		return ErrInvalidStatus
	}
	if s.Status == SubmissionStatusCompleted {
		if err := s.Result.Validate(); err != nil {
			return err
		}
	} else if s.Result != nil {
		return NewValidationError("result", "only allowed on completed submissions", ErrValidation)
	}
	return nil
}

// Transition moves a pending submission to a terminal status.
//
// A completed transition requires a valid result; a failed transition drops
// any result. Asking for the terminal status the submission already holds
// returns ErrAlreadyInState and leaves it untouched.
func (s *Submission) Transition(status SubmissionStatus, result *Result, now time.Time) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	if s.Status == status && status.IsTerminal() {
		return ErrAlreadyInState
	}
	if s.Status != SubmissionStatusPending || !status.IsTerminal() {
		return ErrInvalidTransition
	}

	switch status {
	case SubmissionStatusCompleted:
		if err := result.Validate(); err != nil {
			return err
		}
		s.Result = result.Clone()
	case SubmissionStatusFailed:
		s.Result = nil
	}

	s.Status = status
	s.UpdatedAt = now.UTC()
	return nil
}

// Clone returns a deep copy so callers never share mutable state with a store.
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	c := *s
	c.Result = s.Result.Clone()
	return &c
}

// Clone returns a deep copy of the result.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	items := make([]RecognizedItem, len(r.RecognizedItems))
	copy(items, r.RecognizedItems)
	return &Result{RecognizedItems: items}
}
