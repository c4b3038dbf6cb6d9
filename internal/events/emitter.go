package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter fans each event out to every registered handler on
// the caller's goroutine, in the order the handlers were registered.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter returns an emitter with no handlers. A nil logger
// selects the default logger.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With("component", "event_emitter"),
	}
}

// RegisterHandler subscribes handler to every subsequent event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	e.handlers = append(e.handlers, handler)
	n := len(e.handlers)
	e.mu.Unlock()

	e.logger.Debug("event handler registered", "handlers", n)
}

// subscribers returns a copy of the handler list so dispatch runs unlocked.
func (e *InMemoryEventEmitter) subscribers() []EventHandler {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]EventHandler(nil), e.handlers...)
}

// EmitEvent delivers event to every handler. A failing handler does not stop
// delivery to the rest; the first failure is returned once all have run.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *Event) error {
	handlers := e.subscribers()
	log := e.logger.With("event_id", event.ID, "event_type", event.Type)
	log.Debug("dispatching event", "handlers", len(handlers))

	var firstErr error
	for i, h := range handlers {
		err := h.HandleEvent(ctx, event)
		if err == nil {
			continue
		}
		log.Error("event handler failed", "handler_index", i, "error", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
