//go:build linux
// +build linux

// control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific platform metrics and debug probe integrations.

package control

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// RegisterPlatformProbes sets Linux-specific debug probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	// Resolution of the clock all dispatch deadlines live on.
	dp.RegisterProbe("platform.monotonic_res_ns", func() any {
		var ts unix.Timespec
		if err := unix.ClockGetres(unix.CLOCK_MONOTONIC, &ts); err != nil {
			return int64(0)
		}
		return ts.Nano()
	})
}
