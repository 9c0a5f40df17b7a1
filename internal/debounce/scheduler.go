package debounce

import (
	"fmt"
	"sync"
	"time"

	"github.com/baaaaaaaka/jdeps/internal/event"
)

// Scheduler coalesces bursts of values into a single delayed emission.
// Only the most recently scheduled value is held; it is sent to the sink
// once its deadline passes without a newer Schedule call.
type Scheduler[T any] struct {
	out event.Sink[T]

	mu       sync.Mutex
	pending  *entry[T]
	stopping bool

	wake chan struct{}
	done chan struct{}

	now func() time.Time
}

type entry[T any] struct {
	value    T
	deadline time.Time
}

func New[T any](out event.Sink[T]) *Scheduler[T] {
	return &Scheduler[T]{
		out:  out,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		now:  time.Now,
	}
}

// Schedule replaces any pending value with value, due after delay.
func (s *Scheduler[T]) Schedule(value T, delay time.Duration) {
	s.mu.Lock()
	s.pending = &entry[T]{value: value, deadline: s.now().Add(delay)}
	s.mu.Unlock()
	s.signal()
}

// Stop lets Run return once nothing is pending. A pending value is still
// emitted first.
func (s *Scheduler[T]) Stop() {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	s.signal()
}

// Done is closed when Run returns.
func (s *Scheduler[T]) Done() <-chan struct{} { return s.done }

// Run is the background worker. It must be called exactly once.
func (s *Scheduler[T]) Run() error {
	defer close(s.done)

	for {
		s.mu.Lock()
		if s.stopping && s.pending == nil {
			s.mu.Unlock()
			return nil
		}

		wait := time.Duration(-1)
		if s.pending != nil {
			now := s.now()
			if now.Before(s.pending.deadline) {
				wait = s.pending.deadline.Sub(now)
			} else {
				value := s.pending.value
				s.pending = nil
				s.mu.Unlock()
				if err := s.out.Send(value); err != nil {
					return fmt.Errorf("emit debounced value: %w", err)
				}
				continue
			}
		}
		s.mu.Unlock()

		if wait < 0 {
			<-s.wake
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-s.wake:
			timer.Stop()
		}
	}
}

func (s *Scheduler[T]) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
