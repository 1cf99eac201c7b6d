// Package api
// Author: momentics <momentics@gmail.com>
//
// Core contracts of the hioload-vsync frame-timing scheduler.
// Part of hioload high-load architecture family.
//
// The package declares the three boundaries of the dispatch core:
//   - VSyncTracker: periodic vsync prediction, consumed by the queue
//   - DispatchTimer: single-shot absolute-deadline timer, owned by the queue
//   - VSyncDispatch: the client-facing register/schedule/cancel surface
//
// All timestamps are int64 nanoseconds on the owning timer's monotonic
// clock; all durations are int64 nanoseconds. Implementations live under
// tracker/, timer/ and dispatch/; fakes for all three live under fake/.
package api
