package scheduler

import (
	"sync"
	"time"
)

// Task is a pending delayed call.
type Task interface {
	// Stop cancels the call. It reports false if the call already ran or
	// was already stopped.
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

type Clock interface {
	Now() time.Time
}

type timeScheduler struct{}

// New returns a Scheduler backed by time.AfterFunc.
func New() Scheduler {
	return timeScheduler{}
}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

type systemClock struct{}

func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Debouncer keeps at most one pending call. Every Trigger cancels the
// previous pending call before scheduling a new one.
type Debouncer struct {
	mu        sync.Mutex
	scheduler Scheduler
	delay     time.Duration
	pending   Task
}

func NewDebouncer(s Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{scheduler: s, delay: delay}
}

func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
	}

	var task Task
	task = d.scheduler.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending == task {
			d.pending = nil
		}
		d.mu.Unlock()
		f()
	})
	d.pending = task
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil {
		return false
	}
	stopped := d.pending.Stop()
	d.pending = nil
	return stopped
}
