// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/hioload-vsync/api"
)

// Timer is a manually driven DispatchTimer for deterministic tests. Time
// only moves when the test advances it; Fire invokes the armed callback
// with the virtual clock set to the armed deadline.
type Timer struct {
	mu          sync.Mutex
	now         int64
	deadline    int64
	fn          func()
	armed       bool
	armCount    int
	cancelCount int
}

var _ api.DispatchTimer = (*Timer)(nil)

// NewTimer creates a fake timer with the virtual clock at start.
func NewTimer(start int64) *Timer {
	return &Timer{now: start}
}

func (t *Timer) ArmAt(deadline int64, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deadline = deadline
	t.fn = fn
	t.armed = true
	t.armCount++
}

func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = false
	t.cancelCount++
}

func (t *Timer) Now() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}

func (t *Timer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = false
	return nil
}

// Advance moves the virtual clock forward without firing.
func (t *Timer) Advance(delta int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now += delta
}

// SetNow jumps the virtual clock.
func (t *Timer) SetNow(now int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}

// Fire advances the clock to the armed deadline and invokes the callback
// outside the fake's lock, so the callback may re-arm reentrantly.
// Reports whether anything was armed.
func (t *Timer) Fire() bool {
	t.mu.Lock()
	if !t.armed {
		t.mu.Unlock()
		return false
	}
	fn := t.fn
	t.armed = false
	if t.deadline > t.now {
		t.now = t.deadline
	}
	t.mu.Unlock()
	fn()
	return true
}

// Armed reports whether an arm is outstanding.
func (t *Timer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// Deadline returns the armed deadline; valid only while Armed.
func (t *Timer) Deadline() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deadline
}

// ArmCount returns how many times ArmAt was called.
func (t *Timer) ArmCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armCount
}

// CancelCount returns how many times Cancel was called.
func (t *Timer) CancelCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelCount
}
