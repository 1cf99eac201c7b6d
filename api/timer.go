// File: api/timer.go
// Package api defines the DispatchTimer contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// DispatchTimer is a single-shot absolute-deadline timer. Exactly one
// instance is owned by one dispatch queue; it is never shared.
//
// A timer may fire slightly after its armed deadline but must never fire
// materially early. Implementations serialize their own firing path.
type DispatchTimer interface {
	// ArmAt arms the timer for the absolute deadline (nanoseconds on the
	// timer's monotonic clock), replacing any previous arm. fn runs on the
	// timer's firing context.
	ArmAt(deadline int64, fn func())

	// Cancel disarms the timer. A firing already in flight may still run.
	Cancel()

	// Now returns the current time on the timer's monotonic clock.
	Now() int64

	// Close releases the timer. No firings occur after Close returns.
	Close() error
}
