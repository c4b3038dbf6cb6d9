package events

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	mu           sync.Mutex
	HandledCount int
	LastEvent    *Event
	HandlerError error
}

// HandleEvent implements EventHandler.
func (m *MockEventHandler) HandleEvent(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HandledCount++
	m.LastEvent = event
	return m.HandlerError
}

func TestNewEvent(t *testing.T) {
	payload := map[string]string{"image_id": "img1", "task_uuid": "task-1"}

	event, err := NewEvent(TypeSubmissionCompleted, payload)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeSubmissionCompleted, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded map[string]string
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewEvent_UnmarshalablePayload(t *testing.T) {
	_, err := NewEvent("bad", make(chan int))
	assert.Error(t, err)
}

func TestEventHandlerFunc(t *testing.T) {
	var got *Event
	h := EventHandlerFunc(func(ctx context.Context, e *Event) error {
		got = e
		return nil
	})

	event := &Event{Type: TypeSubmissionFailed}
	require.NoError(t, h.HandleEvent(context.Background(), event))
	assert.Same(t, event, got)
}
