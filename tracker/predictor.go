// File: tracker/predictor.go
// Windowed periodic model over observed vsync pulses.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tracker

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-vsync/api"
	"github.com/momentics/hioload-vsync/control"
)

// Defaults seed the model before any pulse arrives, so scheduling degrades
// gracefully instead of refusing to predict.
const (
	DefaultSeedPeriod     = int64(16_666_667) // 60Hz
	DefaultSampleCapacity = 32
	DefaultMinSamples     = 6
)

// Options tunes one Predictor.
type Options struct {
	// SeedPeriod is the period assumed until the window holds MinSamples.
	SeedPeriod int64
	// SampleCapacity bounds the timestamp history window.
	SampleCapacity int
	// MinSamples is the confidence bar for NeedsMoreSamples and for
	// outlier rejection to engage.
	MinSamples int
	// Metrics, when non-nil, receives sample/outlier counters.
	Metrics *control.MetricsRegistry
}

// Predictor fits period as the mean pulse-to-pulse delta over a FIFO
// window and anchors phase at the newest accepted pulse.
type Predictor struct {
	mu      sync.RWMutex
	samples *queue.Queue // accepted pulse timestamps, oldest first
	period  int64
	base    int64
	divisor int64 // render-rate divisor, >= 1
	opts    Options
}

var _ api.VSyncTracker = (*Predictor)(nil)

// NewPredictor creates a predictor seeded with opts.SeedPeriod.
func NewPredictor(opts Options) *Predictor {
	if opts.SeedPeriod <= 0 {
		opts.SeedPeriod = DefaultSeedPeriod
	}
	if opts.SampleCapacity <= 1 {
		opts.SampleCapacity = DefaultSampleCapacity
	}
	if opts.MinSamples <= 1 {
		opts.MinSamples = DefaultMinSamples
	}
	return &Predictor{
		samples: queue.New(),
		period:  opts.SeedPeriod,
		divisor: 1,
		opts:    opts,
	}
}

// AddVsyncTimestamp records an observed pulse. Non-monotonic samples and,
// once the model is confident, samples further than a quarter period from
// the predicted grid are rejected and reported as false.
func (p *Predictor) AddVsyncTimestamp(timestamp int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := p.samples.Length(); n > 0 {
		last := p.samples.Get(n - 1).(int64)
		if timestamp <= last {
			p.count("tracker.outliers", 1)
			return false
		}
		if n >= p.opts.MinSamples {
			if dist := p.gridDistanceLocked(timestamp); dist > p.period/4 {
				p.count("tracker.outliers", 1)
				return false
			}
		}
	}

	p.samples.Add(timestamp)
	for p.samples.Length() > p.opts.SampleCapacity {
		p.samples.Remove()
	}
	if n := p.samples.Length(); n >= 2 {
		first := p.samples.Get(0).(int64)
		p.period = (timestamp - first) / int64(n-1)
	}
	p.base = timestamp
	p.count("tracker.samples", 1)
	return true
}

// gridDistanceLocked returns the distance of ts to the nearest point of
// the fitted grid.
func (p *Predictor) gridDistanceLocked(ts int64) int64 {
	mod := floorMod(ts-p.base, p.period)
	if other := p.period - mod; other < mod {
		return other
	}
	return mod
}

// CurrentPeriod returns the fitted hardware vsync period.
func (p *Predictor) CurrentPeriod() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.period
}

// MinFramePeriod returns the smallest achievable frame period under the
// current render rate.
func (p *Predictor) MinFramePeriod() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.period * p.divisor
}

// NextAnticipatedVSyncTimeFrom returns the smallest base + k*framePeriod
// at or after timePoint. The hint substitutes for the phase anchor only
// while the window is empty; it is never required for correctness.
func (p *Predictor) NextAnticipatedVSyncTimeFrom(timePoint int64, knownVsync *int64) int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	base := p.base
	if p.samples.Length() == 0 && knownVsync != nil {
		base = *knownVsync
	}
	framePeriod := p.period * p.divisor
	if framePeriod <= 0 {
		return timePoint
	}
	mod := floorMod(timePoint-base, framePeriod)
	if mod == 0 {
		return timePoint
	}
	return timePoint - mod + framePeriod
}

// NeedsMoreSamples reports whether the window is still below the
// confidence bar.
func (p *Predictor) NeedsMoreSamples() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.samples.Length() < p.opts.MinSamples
}

// IsVSyncInPhase reports whether timePoint falls on the grid of the given
// render rate, within an eighth-period tolerance.
func (p *Predictor) IsVSyncInPhase(timePoint int64, rate api.Fps) bool {
	per := rate.PeriodNsecs()
	if per <= 0 {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	mod := floorMod(timePoint-p.base, per)
	if other := per - mod; other < mod {
		mod = other
	}
	return mod <= per/8
}

// SetRenderRate derives the divisor of the hardware rate closest to the
// requested render rate. seamless is recorded for telemetry only.
func (p *Predictor) SetRenderRate(rate api.Fps, seamless bool) {
	per := rate.PeriodNsecs()
	p.mu.Lock()
	defer p.mu.Unlock()
	if per <= 0 || p.period <= 0 {
		p.divisor = 1
	} else {
		d := (per + p.period/2) / p.period
		if d < 1 {
			d = 1
		}
		p.divisor = d
	}
	if !seamless {
		p.count("tracker.rate_switches", 1)
	}
}

// ResetModel discards the window and falls back to the seed period. The
// render-rate divisor survives a reset.
func (p *Predictor) ResetModel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples = queue.New()
	p.period = p.opts.SeedPeriod
	p.base = 0
	p.count("tracker.resets", 1)
}

// OnFrameBegin feeds frame pacing telemetry.
func (p *Predictor) OnFrameBegin(int64) {
	p.count("tracker.frames_begun", 1)
}

// OnFrameMissed feeds frame pacing telemetry.
func (p *Predictor) OnFrameMissed(int64) {
	p.count("tracker.frames_missed", 1)
}

// SampleCount reports the current window depth, for debug probes.
func (p *Predictor) SampleCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.samples.Length()
}

func (p *Predictor) count(key string, delta int64) {
	if p.opts.Metrics != nil {
		p.opts.Metrics.Inc(key, delta)
	}
}

// floorMod returns x mod m in [0, m), also for negative x.
func floorMod(x, m int64) int64 {
	mod := x % m
	if mod < 0 {
		mod += m
	}
	return mod
}
