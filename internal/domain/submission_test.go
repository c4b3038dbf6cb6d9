package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{RecognizedItems: []RecognizedItem{
		{ItemID: "item1", Confidence: 0.95},
		{ItemID: "item2", Confidence: 0.85},
	}}
}

func TestNewSubmission(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)

	s, err := NewSubmission("img1", "task-1", now)
	require.NoError(t, err)
	assert.Equal(t, "img1", s.ImageID)
	assert.Equal(t, "task-1", s.TaskUUID)
	assert.Equal(t, SubmissionStatusPending, s.Status)
	assert.Nil(t, s.Result)
	assert.Equal(t, now, s.CreatedAt)
	assert.Equal(t, now, s.UpdatedAt)

	_, err = NewSubmission("", "task-1", now)
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = NewSubmission("img1", " ", now)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestSubmissionStatus(t *testing.T) {
	t.Parallel()

	assert.True(t, SubmissionStatusPending.IsValid())
	assert.False(t, SubmissionStatusPending.IsTerminal())
	assert.True(t, SubmissionStatusCompleted.IsTerminal())
	assert.True(t, SubmissionStatusFailed.IsTerminal())
	assert.False(t, SubmissionStatus("processing").IsValid())
}

func TestSubmission_Transition(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)
	later := created.Add(5 * time.Second)

	tests := []struct {
		name       string
		from       SubmissionStatus
		to         SubmissionStatus
		result     *Result
		wantErr    error
		wantStatus SubmissionStatus
	}{
		{
			name:       "pending to completed",
			from:       SubmissionStatusPending,
			to:         SubmissionStatusCompleted,
			result:     sampleResult(),
			wantStatus: SubmissionStatusCompleted,
		},
		{
			name:       "pending to failed",
			from:       SubmissionStatusPending,
			to:         SubmissionStatusFailed,
			wantStatus: SubmissionStatusFailed,
		},
		{
			name:       "completed without result",
			from:       SubmissionStatusPending,
			to:         SubmissionStatusCompleted,
			wantErr:    ErrInvalidResult,
			wantStatus: SubmissionStatusPending,
		},
		{
			name:       "completed again is a no-op",
			from:       SubmissionStatusCompleted,
			to:         SubmissionStatusCompleted,
			result:     sampleResult(),
			wantErr:    ErrAlreadyInState,
			wantStatus: SubmissionStatusCompleted,
		},
		{
			name:       "completed cannot fail",
			from:       SubmissionStatusCompleted,
			to:         SubmissionStatusFailed,
			wantErr:    ErrInvalidTransition,
			wantStatus: SubmissionStatusCompleted,
		},
		{
			name:       "failed cannot complete",
			from:       SubmissionStatusFailed,
			to:         SubmissionStatusCompleted,
			result:     sampleResult(),
			wantErr:    ErrInvalidTransition,
			wantStatus: SubmissionStatusFailed,
		},
		{
			name:       "no regression to pending",
			from:       SubmissionStatusCompleted,
			to:         SubmissionStatusPending,
			wantErr:    ErrInvalidTransition,
			wantStatus: SubmissionStatusCompleted,
		},
		{
			name:       "unknown status",
			from:       SubmissionStatusPending,
			to:         SubmissionStatus("processing"),
			wantErr:    ErrInvalidStatus,
			wantStatus: SubmissionStatusPending,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := &Submission{ImageID: "img1", TaskUUID: "task-1", Status: tc.from, CreatedAt: created, UpdatedAt: created}
			if tc.from == SubmissionStatusCompleted {
				s.Result = sampleResult()
			}

			err := s.Transition(tc.to, tc.result, later)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, later, s.UpdatedAt)
			}
			assert.Equal(t, tc.wantStatus, s.Status)
			assert.Equal(t, s.Status == SubmissionStatusCompleted, s.Result != nil,
				"result must be present iff completed")
		})
	}
}

func TestResult_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, sampleResult().Validate())

	var nilResult *Result
	assert.ErrorIs(t, nilResult.Validate(), ErrInvalidResult)
	assert.ErrorIs(t, (&Result{}).Validate(), ErrInvalidResult)
	assert.ErrorIs(t, (&Result{RecognizedItems: []RecognizedItem{{ItemID: "a", Confidence: 1.2}}}).Validate(), ErrInvalidResult)
	assert.ErrorIs(t, (&Result{RecognizedItems: []RecognizedItem{{ItemID: "a", Confidence: -0.1}}}).Validate(), ErrInvalidResult)
	assert.ErrorIs(t, (&Result{RecognizedItems: []RecognizedItem{{ItemID: "", Confidence: 0.5}}}).Validate(), ErrInvalidResult)
}

func TestSubmission_CloneIsDeep(t *testing.T) {
	t.Parallel()

	s := &Submission{ImageID: "img1", TaskUUID: "t", Status: SubmissionStatusCompleted, Result: sampleResult()}
	c := s.Clone()
	c.Result.RecognizedItems[0].Confidence = 0.1

	assert.Equal(t, 0.95, s.Result.RecognizedItems[0].Confidence)
}

func TestSubmission_ValidateResultInvariant(t *testing.T) {
	t.Parallel()

	s := &Submission{ImageID: "img1", TaskUUID: "t", Status: SubmissionStatusPending, Result: sampleResult()}
	assert.ErrorIs(t, s.Validate(), ErrValidation)

	s = &Submission{ImageID: "img1", TaskUUID: "t", Status: SubmissionStatusCompleted}
	assert.ErrorIs(t, s.Validate(), ErrInvalidResult)
}
