//go:build linux
// +build linux

// File: timer/clock_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package timer

import "golang.org/x/sys/unix"

// nowNanos reads CLOCK_MONOTONIC, the clock timerfd deadlines are armed on.
func nowNanos() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return ts.Nano()
}
