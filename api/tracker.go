// File: api/tracker.go
// Package api defines the VSyncTracker contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Fps is a render or refresh rate in frames per second.
type Fps float64

// FpsFromPeriodNsecs converts a frame period in nanoseconds to a rate.
func FpsFromPeriodNsecs(period int64) Fps {
	if period <= 0 {
		return 0
	}
	return Fps(1e9 / float64(period))
}

// PeriodNsecs returns the frame period of the rate in nanoseconds.
func (f Fps) PeriodNsecs() int64 {
	if f <= 0 {
		return 0
	}
	return int64(1e9 / float64(f))
}

// VSyncTracker predicts future vsync instants from a periodic model fitted
// to observed hardware pulses. All methods are thread-safe, non-blocking,
// and callable concurrently with the dispatch queue. The queue must stay
// correct against any conforming implementation, including one whose
// period estimate changes between any two calls.
type VSyncTracker interface {
	// AddVsyncTimestamp records an observed pulse and reports whether the
	// current model accepted it. May update the fitted period.
	AddVsyncTimestamp(timestamp int64) bool

	// CurrentPeriod returns the current best periodic estimate in nanoseconds.
	CurrentPeriod() int64

	// MinFramePeriod returns the lower bound frame period achievable given
	// the current render rate.
	MinFramePeriod() int64

	// NextAnticipatedVSyncTimeFrom returns the smallest predicted vsync
	// instant at or after timePoint, computed from the periodic model
	// base + k*period. knownVsync, when non-nil, may disambiguate phase
	// but is never required for correctness.
	NextAnticipatedVSyncTimeFrom(timePoint int64, knownVsync *int64) int64

	// NeedsMoreSamples reports whether the model wants more pulses before
	// its estimate is confident. Not an error state: predictions are still
	// usable, only less accurate.
	NeedsMoreSamples() bool

	// IsVSyncInPhase reports whether timePoint aligns with a frame of the
	// given render rate.
	IsVSyncInPhase(timePoint int64, rate Fps) bool

	// SetRenderRate sets the client-visible target rate, which may be a
	// submultiple of the raw vsync rate. seamless indicates the switch
	// needs no mode change.
	SetRenderRate(rate Fps, seamless bool)

	// ResetModel discards all samples and falls back to the seed period.
	ResetModel()

	// OnFrameBegin and OnFrameMissed are telemetry hooks. They never change
	// prediction results synchronously.
	OnFrameBegin(timePoint int64)
	OnFrameMissed(timePoint int64)
}
