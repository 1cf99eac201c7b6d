// File: api/control.go
// Package api defines the Control contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// Control is the runtime introspection surface of the scheduler: the
// configuration mirror, firing-path metrics, and debug probes, behind one
// interface so tooling never depends on concrete control types.
type Control interface {
	// GetConfig returns a snapshot of the mirrored configuration values.
	GetConfig() map[string]any
	// SetConfig merges values into the mirror and notifies reload listeners.
	SetConfig(cfg map[string]any) error
	// Stats merges metric counters, gauges, and debug probe output.
	Stats() map[string]any
	// OnReload registers a listener invoked on configuration changes.
	OnReload(fn func())
	// RegisterDebugProbe inserts a named introspection hook, sampled on
	// every Stats call and state dump.
	RegisterDebugProbe(name string, fn func() any)
}
