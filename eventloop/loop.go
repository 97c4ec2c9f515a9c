// Package eventloop runs all bot business logic on a single goroutine.
//
// Discord events arrive on their own goroutines; handlers post work to the
// Loop, which runs each callback to completion before starting the next.
// Slots provide cancellable delayed callbacks on top of the loop.
package eventloop

import (
	"context"
	"fmt"
	log "log/slog"
	"sync"
	"time"
)

// Loop serializes callbacks onto one goroutine.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// New creates a loop with room for backlog pending callbacks.
func New(backlog int) *Loop {
	if backlog <= 0 {
		backlog = 256
	}
	return &Loop{
		tasks: make(chan func(), backlog),
		done:  make(chan struct{}),
	}
}

// Run processes callbacks until ctx is canceled. Panics in a callback are
// logged and do not stop the loop.
func (l *Loop) Run(ctx context.Context) {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("event loop callback panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

// Go queues fn to run on the loop. It returns false once the loop has stopped.
func (l *Loop) Go(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(fn func()) bool {
	finished := make(chan struct{})
	if !l.Go(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-l.done:
		return false
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Slot holds at most one pending delayed callback.
type Slot struct {
	name string
	loop *Loop

	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

// NewSlot creates a named slot bound to the loop.
func (l *Loop) NewSlot(name string) *Slot {
	return &Slot{name: name, loop: l}
}

// Name returns the slot name.
func (s *Slot) Name() string {
	return s.name
}

// Arm schedules fn to run on the loop after delay, replacing any callback
// armed earlier. A replaced callback never runs, even if its timer has
// already fired and it is waiting in the loop queue.
func (s *Slot) Arm(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(delay, func() {
		s.loop.Go(func() {
			if !s.claim(gen) {
				return
			}
			fn()
		})
	})
}

// Cancel drops the pending callback, if any.
func (s *Slot) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.gen++
}

// Pending reports whether a callback is armed and has not run yet.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Slot) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// claim marks the callback of generation gen as running. It fails when the
// callback has been superseded or canceled.
func (s *Slot) claim(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.timer = nil
	return true
}

// PanicError wraps a value recovered from a panicking callback.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprint(e.Value)
}

// Protect runs fn and turns a panic into a *PanicError.
func Protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}
