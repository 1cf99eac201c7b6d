// File: api/dispatch.go
// Package api defines the VSyncDispatch contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// CallbackToken identifies one registered callback inside a dispatch queue.
// Tokens are allocated monotonically and double as the deterministic
// tie-break when two callbacks share a wakeup time.
type CallbackToken uint64

// VSyncCallback is invoked on the dispatch firing context.
//   - wakeupTime: the instant the callback was scheduled to wake at
//   - vsyncTime: the anticipated vsync the wakeup leads
//   - deadline: vsyncTime minus the requested ready duration; client work
//     must be finished by this instant
//
// The callback may call Schedule or Cancel on any registration, including
// its own, during its own invocation.
type VSyncCallback func(wakeupTime, vsyncTime, deadline int64)

// ScheduleTiming carries the parameters of one schedule request.
// Durations are nanoseconds and must be non-negative.
type ScheduleTiming struct {
	// WorkDuration is the time the client needs to produce its frame.
	WorkDuration int64
	// ReadyDuration is additional lead time after work completes before
	// the vsync instant (downstream composition and the like).
	ReadyDuration int64
	// LastVsync is the reference point the next vsync is predicted from,
	// typically the previous wakeup plus WorkDuration+ReadyDuration.
	// A value in the past is valid and yields an immediate-future target.
	LastVsync int64
}

// ScheduleResult reports the timing the queue committed to.
type ScheduleResult struct {
	WakeupTime int64
	VsyncTime  int64
}

// VSyncDispatch multiplexes an arbitrary number of per-client wake
// schedules onto a single DispatchTimer.
type VSyncDispatch interface {
	// RegisterCallback creates an idle registration. No timer side effect.
	RegisterCallback(fn VSyncCallback, name string) (CallbackToken, error)

	// UnregisterCallback removes the registration. Safe concurrently with
	// an in-flight fire of the same token: that invocation completes, no
	// later one starts.
	UnregisterCallback(token CallbackToken) error

	// Schedule records or replaces the pending wakeup for token. It never
	// accumulates: two calls before a fire leave one pending schedule.
	Schedule(token CallbackToken, timing ScheduleTiming) (ScheduleResult, error)

	// Cancel removes a pending wakeup if present. No-op while the callback
	// is firing or already idle. Idempotent.
	Cancel(token CallbackToken) error

	// Close shuts the queue down. Subsequent Schedule/Cancel calls fail
	// with ErrNotInitialized.
	Close() error
}
