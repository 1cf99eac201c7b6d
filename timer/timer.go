// File: timer/timer.go
// Portable one-shot absolute timer on time.Timer.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package timer

import (
	"sync"
	"time"

	"github.com/momentics/hioload-vsync/api"
)

// New returns the best DispatchTimer for the platform: timerfd-backed on
// Linux, time.Timer-backed elsewhere.
func New() api.DispatchTimer {
	return newPlatformTimer()
}

// Now returns the current time in nanoseconds on the platform monotonic
// clock shared by all timers from this package.
func Now() int64 {
	return nowNanos()
}

// stdTimer is the portable implementation. A generation counter ties each
// arm to its pending time.AfterFunc so stale firings are dropped after
// Cancel, re-arm, or Close.
type stdTimer struct {
	fireMu sync.Mutex // serializes callback invocation

	mu       sync.Mutex
	gen      uint64
	deadline int64
	fn       func()
	t        *time.Timer
	closed   bool
}

// NewStd returns the portable implementation regardless of platform.
// Useful when the caller wants identical behavior across OSes.
func NewStd() api.DispatchTimer {
	return &stdTimer{}
}

func (s *stdTimer) ArmAt(deadline int64, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gen++
	gen := s.gen
	s.deadline = deadline
	s.fn = fn
	if s.t != nil {
		s.t.Stop()
	}
	delay := deadline - nowNanos()
	if delay < 0 {
		delay = 0
	}
	s.t = time.AfterFunc(time.Duration(delay), func() { s.fire(gen) })
}

func (s *stdTimer) fire(gen uint64) {
	s.fireMu.Lock()
	defer s.fireMu.Unlock()

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	// time.Timer may wake marginally early; the contract forbids it.
	for {
		rem := s.deadline - nowNanos()
		if rem <= 0 {
			break
		}
		s.mu.Unlock()
		time.Sleep(time.Duration(rem))
		s.mu.Lock()
		if s.closed || gen != s.gen {
			s.mu.Unlock()
			return
		}
	}
	fn := s.fn
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *stdTimer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.t != nil {
		s.t.Stop()
	}
}

func (s *stdTimer) Now() int64 {
	return nowNanos()
}

func (s *stdTimer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.gen++
	if s.t != nil {
		s.t.Stop()
	}
	return nil
}
