// File: timer/timer_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package timer_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hioload-vsync/api"
	"github.com/momentics/hioload-vsync/timer"
)

func implementations(t *testing.T) map[string]func() api.DispatchTimer {
	t.Helper()
	return map[string]func() api.DispatchTimer{
		"platform": timer.New,
		"std":      timer.NewStd,
	}
}

func TestMonotonicClock(t *testing.T) {
	a := timer.Now()
	time.Sleep(time.Millisecond)
	b := timer.Now()
	if b <= a {
		t.Fatalf("clock did not advance: %d then %d", a, b)
	}
}

func TestFireNeverEarly(t *testing.T) {
	for name, mk := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			tm := mk()
			defer tm.Close()

			deadline := tm.Now() + int64(5*time.Millisecond)
			fired := make(chan int64, 1)
			tm.ArmAt(deadline, func() { fired <- tm.Now() })

			select {
			case at := <-fired:
				if at < deadline {
					t.Fatalf("fired %dns early", deadline-at)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("timer never fired")
			}
		})
	}
}

func TestPastDeadlineFiresImmediately(t *testing.T) {
	for name, mk := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			tm := mk()
			defer tm.Close()

			fired := make(chan struct{}, 1)
			tm.ArmAt(tm.Now()-int64(time.Second), func() { fired <- struct{}{} })
			select {
			case <-fired:
			case <-time.After(2 * time.Second):
				t.Fatal("past deadline never fired")
			}
		})
	}
}

func TestRearmReplacesDeadline(t *testing.T) {
	for name, mk := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			tm := mk()
			defer tm.Close()

			var stale int32
			fired := make(chan struct{}, 1)
			// The first arm is far out; the replacement must win and the
			// replaced one must never run.
			tm.ArmAt(tm.Now()+int64(time.Hour), func() { atomic.AddInt32(&stale, 1) })
			tm.ArmAt(tm.Now()+int64(2*time.Millisecond), func() { fired <- struct{}{} })

			select {
			case <-fired:
			case <-time.After(2 * time.Second):
				t.Fatal("replacement arm never fired")
			}
			if n := atomic.LoadInt32(&stale); n != 0 {
				t.Fatalf("replaced arm fired %d times", n)
			}
		})
	}
}

func TestCancelSuppressesFire(t *testing.T) {
	for name, mk := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			tm := mk()
			defer tm.Close()

			var count int32
			tm.ArmAt(tm.Now()+int64(5*time.Millisecond), func() { atomic.AddInt32(&count, 1) })
			tm.Cancel()
			time.Sleep(20 * time.Millisecond)
			if n := atomic.LoadInt32(&count); n != 0 {
				t.Fatalf("cancelled arm fired %d times", n)
			}
			// The timer stays usable after Cancel.
			fired := make(chan struct{}, 1)
			tm.ArmAt(tm.Now()+int64(time.Millisecond), func() { fired <- struct{}{} })
			select {
			case <-fired:
			case <-time.After(2 * time.Second):
				t.Fatal("arm after cancel never fired")
			}
		})
	}
}

func TestCloseIsIdempotentAndFinal(t *testing.T) {
	for name, mk := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			tm := mk()

			var count int32
			tm.ArmAt(tm.Now()+int64(5*time.Millisecond), func() { atomic.AddInt32(&count, 1) })
			if err := tm.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if err := tm.Close(); err != nil {
				t.Fatalf("second Close: %v", err)
			}
			// Arming a closed timer is a no-op.
			tm.ArmAt(tm.Now()+int64(time.Millisecond), func() { atomic.AddInt32(&count, 1) })
			time.Sleep(20 * time.Millisecond)
			if n := atomic.LoadInt32(&count); n != 0 {
				t.Fatalf("closed timer fired %d times", n)
			}
		})
	}
}

func TestRapidRearmFiresOnce(t *testing.T) {
	for name, mk := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			tm := mk()
			defer tm.Close()

			var count int32
			done := make(chan struct{}, 1)
			final := func() {
				atomic.AddInt32(&count, 1)
				done <- struct{}{}
			}
			for i := 0; i < 50; i++ {
				tm.ArmAt(tm.Now()+int64(5*time.Millisecond), func() { atomic.AddInt32(&count, 1) })
			}
			tm.ArmAt(tm.Now()+int64(2*time.Millisecond), final)

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("final arm never fired")
			}
			time.Sleep(20 * time.Millisecond)
			if n := atomic.LoadInt32(&count); n != 1 {
				t.Fatalf("fired %d times across 51 arms, want 1", n)
			}
		})
	}
}
