package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/irmock-api/internal/events"
	"github.com/phrazzld/irmock-api/internal/redact"
)

// Recorder observes callback outcomes, typically to feed metrics.
type Recorder interface {
	CallbackRecorded(delivered bool, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) CallbackRecorded(bool, time.Duration) {}

// CallbackHandler is an events.EventHandler that notifies the callback URL
// carried by terminal submission events.
type CallbackHandler struct {
	notifier Notifier
	recorder Recorder
	timeout  time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

var _ events.EventHandler = (*CallbackHandler)(nil)

// NewCallbackHandler creates a handler. A nil recorder discards outcomes,
// a nil logger selects the default logger.
func NewCallbackHandler(
	notifier Notifier,
	recorder Recorder,
	timeout time.Duration,
	logger *slog.Logger,
) *CallbackHandler {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &CallbackHandler{
		notifier: notifier,
		recorder: recorder,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "webhook")),
	}
}

// HandleEvent implements events.EventHandler. It returns immediately: the
// notification runs on its own goroutine with its own deadline, and its
// failure is only logged. Only malformed payloads are reported as errors.
func (h *CallbackHandler) HandleEvent(_ context.Context, event *events.Event) error {
	if event.Type != events.TypeSubmissionCompleted && event.Type != events.TypeSubmissionFailed {
		return nil
	}

	var payload events.SubmissionPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}
	if payload.CallbackURL == "" || payload.Submission == nil {
		return nil
	}

	h.wg.Add(1)
	go h.deliver(event.ID.String(), payload)
	return nil
}

// Wait blocks until every in-flight delivery has finished.
func (h *CallbackHandler) Wait() {
	h.wg.Wait()
}

func (h *CallbackHandler) deliver(eventID string, payload events.SubmissionPayload) {
	defer h.wg.Done()

	log := h.logger.With(
		slog.String("event_id", eventID),
		slog.String("image_id", payload.Submission.ImageID),
		slog.String("callback_url", redact.String(payload.CallbackURL)),
	)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			h.recorder.CallbackRecorded(false, time.Since(start))
			log.Error("callback delivery panicked", slog.Any("panic", r))
		}
	}()

	// Detached from the emitting context: the completion job may be long gone.
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	err := h.notifier.Notify(ctx, payload.CallbackURL, payload.Submission)
	elapsed := time.Since(start)
	h.recorder.CallbackRecorded(err == nil, elapsed)

	if err != nil {
		log.Warn("callback delivery failed",
			slog.String("error", redact.Error(err)),
			slog.Duration("duration", elapsed))
		return
	}
	log.Info("callback delivered", slog.Duration("duration", elapsed))
}
