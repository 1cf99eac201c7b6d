//go:build !linux
// +build !linux

// File: timer/clock_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package timer

import "time"

// clockBase anchors the portable monotonic clock. time.Since uses the Go
// runtime's monotonic reading, so wall-clock jumps do not leak in.
var clockBase = time.Now()

func nowNanos() int64 {
	return int64(time.Since(clockBase))
}
