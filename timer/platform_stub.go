//go:build !linux
// +build !linux

// File: timer/platform_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package timer

import "github.com/momentics/hioload-vsync/api"

func newPlatformTimer() api.DispatchTimer {
	return &stdTimer{}
}
