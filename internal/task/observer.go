package task

import (
	"time"

	"github.com/phrazzld/irmock-api/internal/domain"
)

// Observer receives scheduling and completion signals, typically to feed metrics.
type Observer interface {
	// TimerArmed is called when a new deferred job starts waiting.
	TimerArmed()

	// TimerReleased is called when a waiting job fires or is disarmed.
	TimerReleased()

	// CompletionRecorded is called after a submission reached a terminal status.
	// Latency is measured from the submission's creation time.
	CompletionRecorded(status domain.SubmissionStatus, latency time.Duration)
}

// NopObserver discards every signal.
type NopObserver struct{}

// TimerArmed implements Observer.
func (NopObserver) TimerArmed() {}

// TimerReleased implements Observer.
func (NopObserver) TimerReleased() {}

// CompletionRecorded implements Observer.
func (NopObserver) CompletionRecorded(domain.SubmissionStatus, time.Duration) {}
