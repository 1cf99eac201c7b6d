// Package dispatch
// Author: momentics <momentics@gmail.com>
//
// Vsync dispatch timer queue: multiplexes any number of per-client wake
// schedules onto a single one-shot DispatchTimer, driven by a VSyncTracker
// period model.
//
// Core properties:
//   - at most one timer arm is outstanding at any instant
//   - wakeups within GroupThreshold of a fired deadline batch into one
//     activation, invoked in ascending (wakeup, token) order
//   - pending wakeups are recomputed from the tracker on every re-arm, so
//     rate drift and rate jumps are reflected within one cycle; the arm is
//     replaced only when the minimum moved by more than MoveThreshold
//   - callbacks run without the queue lock held, so a callback may
//     schedule or cancel any registration, including its own
//   - each schedule call yields at most one fire; rescheduling from inside
//     a callback is a fresh pending wakeup, never a synchronous re-entry
//
// Clients normally hold a Registration handle rather than raw tokens.
package dispatch
