//go:build linux
// +build linux

// File: timer/timerfd_linux.go
// timerfd-backed one-shot absolute timer.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package timer

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-vsync/api"
)

// fdTimer arms a timerfd with TFD_TIMER_ABSTIME on CLOCK_MONOTONIC and
// dispatches expirations from a dedicated reader goroutine.
type fdTimer struct {
	mu       sync.Mutex
	fd       int
	deadline int64
	fn       func()
	closed   bool
	done     chan struct{}
}

func newPlatformTimer() api.DispatchTimer {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC)
	if err != nil {
		// No timerfd (old kernel, seccomp): portable fallback.
		return &stdTimer{}
	}
	t := &fdTimer{fd: fd, done: make(chan struct{})}
	go t.loop()
	return t
}

func (t *fdTimer) loop() {
	buf := make([]byte, 8)
	for {
		_, err := unix.Read(t.fd, buf)
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		t.mu.Lock()
		if t.closed || err != nil {
			t.mu.Unlock()
			close(t.done)
			return
		}
		fn := t.fn
		// A replaced arm can leave a stale expiration queued on the fd.
		// Consume only expirations that belong to the current deadline.
		if fn == nil || nowNanos() < t.deadline {
			t.mu.Unlock()
			continue
		}
		t.fn = nil
		t.mu.Unlock()
		fn()
	}
}

func (t *fdTimer) ArmAt(deadline int64, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if deadline <= 0 {
		// Zero disarms a timerfd; clamp to the earliest armable instant.
		deadline = 1
	}
	t.deadline = deadline
	t.fn = fn
	it := unix.ItimerSpec{Value: unix.NsecToTimespec(deadline)}
	_ = unix.TimerfdSettime(t.fd, unix.TFD_TIMER_ABSTIME, &it, nil)
}

func (t *fdTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.fn = nil
	var it unix.ItimerSpec
	_ = unix.TimerfdSettime(t.fd, 0, &it, nil)
}

func (t *fdTimer) Now() int64 {
	return nowNanos()
}

func (t *fdTimer) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.fn = nil
	// Wake the reader with an immediate relative expiry so it can exit.
	it := unix.ItimerSpec{Value: unix.NsecToTimespec(1)}
	_ = unix.TimerfdSettime(t.fd, 0, &it, nil)
	t.mu.Unlock()
	<-t.done
	return unix.Close(t.fd)
}
