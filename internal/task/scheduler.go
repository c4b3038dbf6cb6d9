package task

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSchedulerStopped is returned when scheduling on a stopped Scheduler.
var ErrSchedulerStopped = errors.New("scheduler is stopped")

// defaultRetryDelay is how long a fired task waits before another enqueue
// attempt when the queue is full.
const defaultRetryDelay = 100 * time.Millisecond

// Scheduler defers tasks: each scheduled task gets its own timer and is
// handed to the task queue when the timer fires. Timers are independent, so
// a slow or failing task never delays another one.
type Scheduler struct {
	queue      TaskQueueWriter
	observer   Observer
	logger     *slog.Logger
	retryDelay time.Duration

	mu      sync.Mutex
	timers  map[uuid.UUID]*time.Timer
	stopped bool
}

// NewScheduler creates a Scheduler feeding the given queue.
func NewScheduler(queue TaskQueueWriter, observer Observer, logger *slog.Logger) *Scheduler {
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		queue:      queue,
		observer:   observer,
		logger:     logger.With("component", "scheduler"),
		retryDelay: defaultRetryDelay,
		timers:     make(map[uuid.UUID]*time.Timer),
	}
}

// Schedule arms a one-shot timer that enqueues task after delay.
// Negative delays are treated as zero.
func (s *Scheduler) Schedule(task Task, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}
	s.arm(task, delay)
	return nil
}

// ScheduleBatch arms one timer per task, the i-th firing after base + i*stagger.
// Either every task is scheduled or none is.
func (s *Scheduler) ScheduleBatch(tasks []Task, base, stagger time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSchedulerStopped
	}
	for i, task := range tasks {
		s.arm(task, base+time.Duration(i)*stagger)
	}
	return nil
}

// Pending returns the number of armed timers that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop disarms every unfired timer and rejects further scheduling.
// Tasks that already reached the queue are unaffected.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	disarmed := 0
	for id, timer := range s.timers {
		if timer.Stop() {
			disarmed++
			s.observer.TimerReleased()
		}
		delete(s.timers, id)
	}
	s.logger.Info("scheduler stopped", "disarmed_timers", disarmed)
}

// arm must be called with s.mu held.
func (s *Scheduler) arm(task Task, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	id := task.ID()
	if existing, ok := s.timers[id]; ok && existing.Stop() {
		s.observer.TimerReleased()
	}
	s.timers[id] = time.AfterFunc(delay, func() { s.fire(task) })
	s.observer.TimerArmed()

	s.logger.Debug("task scheduled",
		"task_id", id,
		"task_type", task.Type(),
		"delay", delay)
}

func (s *Scheduler) fire(task Task) {
	id := task.ID()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.observer.TimerReleased()
		return
	}
	delete(s.timers, id)
	s.mu.Unlock()

	err := s.queue.Enqueue(task)
	if errors.Is(err, ErrQueueFull) {
		s.mu.Lock()
		if !s.stopped {
			s.logger.Warn("task queue full, retrying enqueue",
				"task_id", id,
				"retry_in", s.retryDelay)
			s.timers[id] = time.AfterFunc(s.retryDelay, func() { s.fire(task) })
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
	}

	s.observer.TimerReleased()
	if err != nil {
		s.logger.Error("dropping fired task",
			"task_id", id,
			"task_type", task.Type(),
			"error", err)
	}
}
