// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/hioload-vsync/api"
)

// StubTracker carries the trivial parts of the VSyncTracker contract for
// test trackers with hand-set periods. Concrete stubs embed it and add
// NextAnticipatedVSyncTimeFrom.
type StubTracker struct {
	mu     sync.Mutex
	period int64
}

func (s *StubTracker) AddVsyncTimestamp(int64) bool { return true }

func (s *StubTracker) CurrentPeriod() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

func (s *StubTracker) MinFramePeriod() int64              { return s.CurrentPeriod() }
func (s *StubTracker) NeedsMoreSamples() bool             { return false }
func (s *StubTracker) IsVSyncInPhase(int64, api.Fps) bool { return false }
func (s *StubTracker) SetRenderRate(api.Fps, bool)        {}
func (s *StubTracker) ResetModel()                        {}
func (s *StubTracker) OnFrameBegin(int64)                 {}
func (s *StubTracker) OnFrameMissed(int64)                {}

// FixedRateTracker predicts an ideal zero-phase grid at a fixed period.
type FixedRateTracker struct {
	StubTracker
}

var _ api.VSyncTracker = (*FixedRateTracker)(nil)

// NewFixedRateTracker creates a tracker with an immovable period.
func NewFixedRateTracker(period int64) *FixedRateTracker {
	t := &FixedRateTracker{}
	t.period = period
	return t
}

func (t *FixedRateTracker) NextAnticipatedVSyncTimeFrom(timePoint int64, _ *int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	floor := floorMod(timePoint, t.period)
	if floor == 0 {
		return timePoint
	}
	return timePoint - floor + t.period
}

// VRRTracker predicts a grid whose period and phase anchor can be moved
// between fires, modelling a variable-refresh-rate display.
type VRRTracker struct {
	StubTracker
	base int64
}

var _ api.VSyncTracker = (*VRRTracker)(nil)

// NewVRRTracker creates a tracker starting at the given period, anchored
// at zero.
func NewVRRTracker(period int64) *VRRTracker {
	t := &VRRTracker{}
	t.period = period
	return t
}

func (t *VRRTracker) NextAnticipatedVSyncTimeFrom(timePoint int64, _ *int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	normalized := timePoint - t.base
	floor := floorMod(normalized, t.period)
	if floor == 0 {
		return timePoint
	}
	return timePoint - floor + t.period
}

// SetInterval changes the period and re-anchors the grid at lastKnown.
func (t *VRRTracker) SetInterval(interval, lastKnown int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.period = interval
	t.base = lastKnown
}

func floorMod(x, m int64) int64 {
	mod := x % m
	if mod < 0 {
		mod += m
	}
	return mod
}
