// File: facade/vsync.go
// Unified facade layer for hioload-vsync library.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the HioloadVsync struct, which aggregates the core
// components of the library behind a single facade: the platform timer,
// the vsync period predictor, the dispatch timer queue, and the control
// interface. The facade exposes methods to start/stop the system, create
// callback registrations, feed observed vsync pulses, and retrieve runtime
// services such as Control and debug state.

package facade

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-vsync/adapters"
	"github.com/momentics/hioload-vsync/api"
	"github.com/momentics/hioload-vsync/control"
	"github.com/momentics/hioload-vsync/dispatch"
	"github.com/momentics/hioload-vsync/timer"
	"github.com/momentics/hioload-vsync/tracker"
)

// Late policy names accepted in Config.LatePolicy.
const (
	LateSkipToNextVsync = "skip-to-next-vsync"
	LateFireImmediate   = "fire-immediate"
)

// Config holds parameters immutable per run.
// All fields influence the initialization of internal components; runtime
// values are mirrored into the Control interface for observability.
type Config struct {
	DispatchGroupThreshold int64  `yaml:"dispatch_group_threshold"` // Max spread within one batched fire, ns
	VsyncMoveThreshold     int64  `yaml:"vsync_move_threshold"`     // Min wakeup move forcing re-arm, ns
	LatePolicy             string `yaml:"late_policy"`              // Missed-wakeup policy name
	SeedPeriod             int64  `yaml:"seed_period"`              // Tracker period before confidence, ns
	SampleCapacity         int    `yaml:"sample_capacity"`          // Tracker history window depth
	MinSamples             int    `yaml:"min_samples"`              // Tracker confidence bar
	EnableMetrics          bool   `yaml:"enable_metrics"`           // Whether to count firing-path metrics
	EnableDebug            bool   `yaml:"enable_debug"`             // Whether to register debug probes
}

// DefaultConfig returns default configuration values.
// These sane defaults support typical displays without extensive tuning.
func DefaultConfig() *Config {
	return &Config{
		DispatchGroupThreshold: dispatch.DefaultGroupThreshold, // 100us batching window
		VsyncMoveThreshold:     dispatch.DefaultMoveThreshold,  // 500us re-arm hysteresis
		LatePolicy:             LateSkipToNextVsync,
		SeedPeriod:             tracker.DefaultSeedPeriod, // assume 60Hz until fitted
		SampleCapacity:         tracker.DefaultSampleCapacity,
		MinSamples:             tracker.DefaultMinSamples,
		EnableMetrics:          true,
		EnableDebug:            true,
	}
}

// HioloadVsync is the main facade type.
// It implements api.GracefulShutdown to allow unified shutdown logic.
type HioloadVsync struct {
	ctrl      *adapters.ControlAdapter
	predictor *tracker.Predictor
	timer     api.DispatchTimer
	queue     *dispatch.TimerQueue

	config  *Config
	mu      sync.Mutex
	started bool
	stopped bool
}

// Ensure compliance with api.GracefulShutdown.
var _ api.GracefulShutdown = (*HioloadVsync)(nil)

// New constructs HioloadVsync with the given configuration, wiring the
// control adapter, predictor, platform timer, and dispatch queue.
func New(cfg *Config) (*HioloadVsync, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	late, err := latePolicy(cfg.LatePolicy)
	if err != nil {
		return nil, err
	}

	h := &HioloadVsync{config: cfg}
	h.ctrl = adapters.NewControlAdapter()

	var metrics *control.MetricsRegistry
	if cfg.EnableMetrics {
		metrics = h.ctrl.Metrics()
	}

	h.predictor = tracker.NewPredictor(tracker.Options{
		SeedPeriod:     cfg.SeedPeriod,
		SampleCapacity: cfg.SampleCapacity,
		MinSamples:     cfg.MinSamples,
		Metrics:        metrics,
	})
	h.timer = timer.New()
	h.queue = dispatch.NewTimerQueue(h.timer, h.predictor, dispatch.Options{
		GroupThreshold: cfg.DispatchGroupThreshold,
		MoveThreshold:  cfg.VsyncMoveThreshold,
		Late:           late,
		Metrics:        metrics,
	})

	// Expose configuration values via Control for observability.
	h.ctrl.SetConfig(map[string]any{
		"dispatch_group_threshold": cfg.DispatchGroupThreshold,
		"vsync_move_threshold":     cfg.VsyncMoveThreshold,
		"late_policy":              cfg.LatePolicy,
		"seed_period":              cfg.SeedPeriod,
	})
	if cfg.EnableDebug {
		h.ctrl.RegisterDebugProbe("dispatch.pending", func() any {
			return h.queue.PendingCount()
		})
		h.ctrl.RegisterDebugProbe("tracker.period", func() any {
			return h.predictor.CurrentPeriod()
		})
		h.ctrl.RegisterDebugProbe("tracker.samples", func() any {
			return h.predictor.SampleCount()
		})
		h.ctrl.RegisterDebugProbe("tracker.needs_more_samples", func() any {
			return h.predictor.NeedsMoreSamples()
		})
	}
	return h, nil
}

func latePolicy(name string) (dispatch.LatePolicy, error) {
	switch name {
	case "", LateSkipToNextVsync:
		return dispatch.LateSkipToNextVsync, nil
	case LateFireImmediate:
		return dispatch.LateFireImmediate, nil
	default:
		return 0, fmt.Errorf("unknown late policy %q", name)
	}
}

// Start marks the facade running. Subsequent calls have no effect.
func (h *HioloadVsync) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return api.ErrNotInitialized
	}
	h.started = true
	return nil
}

// Stop shuts down the dispatch queue and its timer. The facade cannot be
// restarted after Stop; calling Stop again is a no-op.
func (h *HioloadVsync) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return nil
	}
	h.stopped = true
	h.started = false
	return h.queue.Close()
}

// Shutdown implements api.GracefulShutdown by delegating to Stop().
func (h *HioloadVsync) Shutdown() error {
	return h.Stop()
}

// Register creates a callback registration against the dispatch queue.
func (h *HioloadVsync) Register(name string, fn api.VSyncCallback) (*dispatch.Registration, error) {
	return dispatch.NewRegistration(h.queue, fn, name)
}

// AddVsyncTimestamp feeds one observed hardware pulse to the predictor.
func (h *HioloadVsync) AddVsyncTimestamp(ts int64) bool {
	return h.predictor.AddVsyncTimestamp(ts)
}

// SetRenderRate forwards a render-rate change to the predictor.
func (h *HioloadVsync) SetRenderRate(rate api.Fps, seamless bool) {
	h.predictor.SetRenderRate(rate, seamless)
}

// Now returns the current time on the dispatch clock.
func (h *HioloadVsync) Now() int64 {
	return h.timer.Now()
}

// GetControl returns the Control interface for dynamic config and metrics.
func (h *HioloadVsync) GetControl() api.Control {
	return h.ctrl
}

// GetTracker returns the predictor behind its consumed contract.
func (h *HioloadVsync) GetTracker() api.VSyncTracker {
	return h.predictor
}

// GetDispatch returns the dispatch queue behind its contract.
func (h *HioloadVsync) GetDispatch() api.VSyncDispatch {
	return h.queue
}

// DebugJSON renders all registered debug probes as JSON.
func (h *HioloadVsync) DebugJSON() ([]byte, error) {
	return h.ctrl.Debug().DumpJSON()
}
