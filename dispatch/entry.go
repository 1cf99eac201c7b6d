// File: dispatch/entry.go
// Per-registration bookkeeping for the vsync dispatch timer queue.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package dispatch

import (
	"github.com/momentics/hioload-vsync/api"
)

type entryStatus uint8

const (
	statusIdle entryStatus = iota
	statusPending
	statusFiring
)

// entry is one registered callback and its pending-schedule state. All
// fields are guarded by the queue mutex; the callback itself is invoked
// with no locks held.
type entry struct {
	token api.CallbackToken
	name  string
	fn    api.VSyncCallback

	status entryStatus

	// Parameters of the last Schedule call.
	workDuration  int64
	readyDuration int64
	lastVsync     int64

	// Derived wakeup, valid while status == statusPending.
	wakeup int64
	vsync  int64

	// Vsync last dispatched for, for diagnostics.
	lastFired int64
}

func newEntry(token api.CallbackToken, name string, fn api.VSyncCallback) *entry {
	return &entry{token: token, name: name, fn: fn}
}

// scheduleLocked records the request and computes the wakeup. Called for
// fresh schedules, replacements of a pending schedule, and reentrant
// schedules from inside the entry's own callback; all three leave the
// entry Pending with exactly one wakeup.
func (e *entry) scheduleLocked(tr api.VSyncTracker, timing api.ScheduleTiming, now int64, late LatePolicy) api.ScheduleResult {
	e.workDuration = timing.WorkDuration
	e.readyDuration = timing.ReadyDuration
	e.lastVsync = timing.LastVsync
	e.computeLocked(tr, now, late, nil)
	e.status = statusPending
	return api.ScheduleResult{WakeupTime: e.wakeup, VsyncTime: e.vsync}
}

// updateLocked recomputes the wakeup of a still-pending entry against the
// tracker's current model. The previous prediction is passed as the phase
// hint.
func (e *entry) updateLocked(tr api.VSyncTracker, now int64, late LatePolicy) {
	prev := e.vsync
	e.computeLocked(tr, now, late, &prev)
}

func (e *entry) computeLocked(tr api.VSyncTracker, now int64, late LatePolicy, hint *int64) {
	lead := e.workDuration + e.readyDuration
	ref := e.lastVsync
	if late == LateSkipToNextVsync {
		// Slide the reference forward so the wakeup is always reachable:
		// a stale LastVsync targets the next achievable vsync instead of
		// one whose wakeup already passed.
		if min := now + lead; min > ref {
			ref = min
		}
	}
	vsync := tr.NextAnticipatedVSyncTimeFrom(ref, hint)
	wake := vsync - lead
	if wake < now {
		// Missed-deadline policy: fire as soon as possible, never drop.
		wake = now
	}
	e.vsync = vsync
	e.wakeup = wake
}

// beginFiringLocked moves a pending entry into its invocation.
func (e *entry) beginFiringLocked() {
	e.status = statusFiring
	e.lastFired = e.vsync
}

// finishFiringLocked reconciles after the callback returned. An entry the
// callback rescheduled is already Pending again and stays that way.
func (e *entry) finishFiringLocked() {
	if e.status == statusFiring {
		e.status = statusIdle
	}
}

// cancelLocked removes a pending wakeup. Firing and idle entries are left
// alone, which makes cancellation race-tolerant and idempotent.
func (e *entry) cancelLocked() {
	if e.status == statusPending {
		e.status = statusIdle
	}
}
