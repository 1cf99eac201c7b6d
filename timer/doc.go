// Package timer
// Author: momentics <momentics@gmail.com>
//
// Single-shot absolute-deadline timers for the vsync dispatch queue.
//
// The Linux implementation arms a timerfd on CLOCK_MONOTONIC with
// TFD_TIMER_ABSTIME, so the kernel owns the never-early guarantee. The
// portable implementation runs on time.Timer with an explicit re-sleep
// guard against early wakeups. Both serialize their firing path: at most
// one callback invocation is in flight per timer.
//
// All deadlines and Now() values are nanoseconds on the same monotonic
// clock; mixing clock domains between a tracker and a timer is a caller
// error.
package timer
