// File: dispatch/timerqueue.go
// The vsync dispatch timer queue.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package dispatch

import (
	"log"
	"math"
	"sort"
	"sync"

	"github.com/momentics/hioload-vsync/api"
	"github.com/momentics/hioload-vsync/control"
	"github.com/momentics/hioload-vsync/pool"
)

// LatePolicy selects what Schedule does when the computed wakeup has
// already passed.
type LatePolicy int

const (
	// LateSkipToNextVsync slides the prediction reference to
	// max(LastVsync, now+work+ready), so the committed wakeup is never in
	// the past and a stale request targets the next achievable vsync.
	LateSkipToNextVsync LatePolicy = iota
	// LateFireImmediate predicts from LastVsync verbatim and clamps a
	// passed wakeup to now; the entry merges into the very next batch.
	LateFireImmediate
)

// Default thresholds, matching the reference tuning of the dispatch core.
const (
	DefaultGroupThreshold = int64(100_000) // 100us
	DefaultMoveThreshold  = int64(500_000) // 500us
)

// Options tunes one TimerQueue.
type Options struct {
	// GroupThreshold is the maximum spread within one batched fire.
	GroupThreshold int64
	// MoveThreshold is the minimum change in the minimum pending wakeup
	// that forces cancel-and-rearm instead of letting the arm stand.
	MoveThreshold int64
	// Late selects the missed-wakeup policy.
	Late LatePolicy
	// Metrics, when non-nil, receives firing-path counters.
	Metrics *control.MetricsRegistry
}

const noDeadline = int64(math.MinInt64)

// invalidToken never matches a live registration; tokens start at 1.
const invalidToken = api.CallbackToken(0)

// invocation is one callback snapshot taken under the lock and invoked
// without it.
type invocation struct {
	fn       api.VSyncCallback
	name     string
	token    api.CallbackToken
	wakeup   int64
	vsync    int64
	deadline int64
}

var invocationSlab = pool.NewSyncPool(func() []invocation {
	return make([]invocation, 0, 8)
})

// TimerQueue multiplexes per-client wake schedules onto one DispatchTimer.
// It implements api.VSyncDispatch.
type TimerQueue struct {
	timer   api.DispatchTimer
	tracker api.VSyncTracker
	opts    Options

	// fireMu serializes firing cycles so exactly one dispatch context
	// invokes callbacks, even if the timer implementation could overlap
	// firings after a reentrant re-arm.
	fireMu sync.Mutex

	mu        sync.Mutex
	entries   map[api.CallbackToken]*entry
	nextToken api.CallbackToken
	armed     int64 // armed timer deadline, noDeadline when idle
	closed    bool
}

var _ api.VSyncDispatch = (*TimerQueue)(nil)

// NewTimerQueue creates a queue owning the given timer. The tracker is
// consumed, never mutated. Zero thresholds fall back to the defaults.
func NewTimerQueue(t api.DispatchTimer, tr api.VSyncTracker, opts Options) *TimerQueue {
	if opts.GroupThreshold <= 0 {
		opts.GroupThreshold = DefaultGroupThreshold
	}
	if opts.MoveThreshold <= 0 {
		opts.MoveThreshold = DefaultMoveThreshold
	}
	return &TimerQueue{
		timer:   t,
		tracker: tr,
		opts:    opts,
		entries: make(map[api.CallbackToken]*entry),
		armed:   noDeadline,
	}
}

// RegisterCallback creates an idle registration. No timer side effect.
func (q *TimerQueue) RegisterCallback(fn api.VSyncCallback, name string) (api.CallbackToken, error) {
	if fn == nil {
		return invalidToken, api.ErrInvalidArgument
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return invalidToken, api.ErrNotInitialized
	}
	q.nextToken++
	token := q.nextToken
	q.entries[token] = newEntry(token, name, fn)
	return token, nil
}

// UnregisterCallback removes the registration and any pending wakeup.
// Safe concurrently with an in-flight fire of the same token: that
// invocation completes on its own, no later one starts. Idempotent, and a
// no-op after Close.
func (q *TimerQueue) UnregisterCallback(token api.CallbackToken) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	e, ok := q.entries[token]
	if !ok {
		return nil
	}
	wasPending := e.status == statusPending
	delete(q.entries, token)
	if wasPending {
		q.rearmLocked(q.timer.Now(), invalidToken)
	}
	return nil
}

// Schedule records or replaces the pending wakeup for token and re-arms
// the timer if the minimum pending wakeup moved.
func (q *TimerQueue) Schedule(token api.CallbackToken, timing api.ScheduleTiming) (api.ScheduleResult, error) {
	if timing.WorkDuration < 0 || timing.ReadyDuration < 0 {
		return api.ScheduleResult{}, api.ErrInvalidDuration
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return api.ScheduleResult{}, api.ErrNotInitialized
	}
	e, ok := q.entries[token]
	if !ok {
		return api.ScheduleResult{}, api.ErrCallbackNotFound
	}
	now := q.timer.Now()
	res := e.scheduleLocked(q.tracker, timing, now, q.opts.Late)
	q.rearmLocked(now, token)
	return res, nil
}

// Cancel removes a pending wakeup if present. No-op while the entry is
// firing or already idle.
func (q *TimerQueue) Cancel(token api.CallbackToken) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return api.ErrNotInitialized
	}
	e, ok := q.entries[token]
	if !ok {
		return api.ErrCallbackNotFound
	}
	if e.status != statusPending {
		return nil
	}
	e.cancelLocked()
	q.rearmLocked(q.timer.Now(), invalidToken)
	return nil
}

// PendingCount reports how many registrations currently hold a wakeup.
func (q *TimerQueue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, e := range q.entries {
		if e.status == statusPending {
			n++
		}
	}
	return n
}

// Close shuts the queue down and closes its timer. An in-flight batch
// completes; subsequent Schedule/Cancel calls fail with ErrNotInitialized.
// Must not be called from inside a callback: closing the timer waits for
// its firing context.
func (q *TimerQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.armed = noDeadline
	q.entries = make(map[api.CallbackToken]*entry)
	q.timer.Cancel()
	q.mu.Unlock()
	return q.timer.Close()
}

// rearmLocked refreshes every pending wakeup from the tracker (skipping a
// just-scheduled token, which is already fresh), then re-arms the timer
// for the new minimum when it moved by more than MoveThreshold. Disarms
// when nothing is pending.
func (q *TimerQueue) rearmLocked(now int64, skip api.CallbackToken) {
	var minWake int64
	found := false
	for _, e := range q.entries {
		if e.status != statusPending {
			continue
		}
		if e.token != skip {
			e.updateLocked(q.tracker, now, q.opts.Late)
		}
		if !found || e.wakeup < minWake {
			minWake = e.wakeup
			found = true
		}
	}
	if !found {
		if q.armed != noDeadline {
			q.timer.Cancel()
			q.armed = noDeadline
		}
		return
	}
	if q.armed != noDeadline {
		// An earlier minimum always replaces the arm: the timer must not
		// fire after a wakeup it could have honored. A later move within
		// MoveThreshold lets the arm stand; the firing path parks the
		// entry for a follow-up activation.
		if minWake >= q.armed && minWake-q.armed <= q.opts.MoveThreshold {
			return
		}
	}
	q.armed = minWake
	q.timer.ArmAt(minWake, q.onFire)
	q.count("dispatch.rearms", 1)
}

// onFire runs on the timer's firing context: snapshot the batch, release
// the lock, invoke in order, re-acquire, reconcile, re-arm.
func (q *TimerQueue) onFire() {
	q.fireMu.Lock()
	defer q.fireMu.Unlock()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	if q.armed == noDeadline {
		// Stale firing from an arm cancelled moments ago.
		q.mu.Unlock()
		return
	}
	q.armed = noDeadline
	// The timer never fires early, so the actual firing instant is the
	// grouping reference; a late fire simply batches more.
	fired := q.timer.Now()

	batch := invocationSlab.Get()
	for _, e := range q.entries {
		if e.status != statusPending || e.wakeup > fired+q.opts.GroupThreshold {
			continue
		}
		batch = append(batch, invocation{
			fn:       e.fn,
			name:     e.name,
			token:    e.token,
			wakeup:   e.wakeup,
			vsync:    e.vsync,
			deadline: e.vsync - e.readyDuration,
		})
		e.beginFiringLocked()
	}
	sort.Slice(batch, func(i, j int) bool {
		if batch[i].wakeup != batch[j].wakeup {
			return batch[i].wakeup < batch[j].wakeup
		}
		return batch[i].token < batch[j].token
	})
	q.mu.Unlock()

	for i := range batch {
		q.invoke(&batch[i])
	}

	q.mu.Lock()
	if !q.closed {
		for i := range batch {
			if e, ok := q.entries[batch[i].token]; ok {
				e.finishFiringLocked()
			}
		}
		q.rearmLocked(q.timer.Now(), invalidToken)
	}
	q.mu.Unlock()

	if len(batch) > 0 {
		q.count("dispatch.fires", int64(len(batch)))
		q.count("dispatch.batches", 1)
	}
	invocationSlab.Put(batch[:0])
}

// invoke runs one callback with fault isolation: a panic is logged and
// counted, never allowed to abort the rest of the batch or corrupt the
// pending index.
func (q *TimerQueue) invoke(inv *invocation) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[dispatch] callback %q fault: %v", inv.name, r)
			q.count("dispatch.callback_faults", 1)
		}
	}()
	inv.fn(inv.wakeup, inv.vsync, inv.deadline)
}

func (q *TimerQueue) count(key string, delta int64) {
	if q.opts.Metrics != nil {
		q.opts.Metrics.Inc(key, delta)
	}
}
