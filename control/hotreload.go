// control/hotreload.go
// Author: momentics <momentics@gmail.com>
//
// Process-wide hot-reload hooks. Components register once at wiring time,
// but adapters may feed this from arbitrary client goroutines, so the
// hook list is guarded.

package control

import "sync"

var (
	reloadMu    sync.Mutex
	reloadHooks []func()
)

// RegisterReloadHook adds a component reload listener.
func RegisterReloadHook(fn func()) {
	reloadMu.Lock()
	defer reloadMu.Unlock()
	reloadHooks = append(reloadHooks, fn)
}

// TriggerHotReload dispatches all reload hooks asynchronously.
func TriggerHotReload() {
	for _, fn := range snapshotReloadHooks() {
		go fn()
	}
}

// TriggerHotReloadSync invokes all reload hooks on the caller's goroutine,
// for deterministic test notification.
func TriggerHotReloadSync() {
	for _, fn := range snapshotReloadHooks() {
		fn()
	}
}

// snapshotReloadHooks copies the list so hooks run without the lock held
// and may themselves register further hooks.
func snapshotReloadHooks() []func() {
	reloadMu.Lock()
	defer reloadMu.Unlock()
	out := make([]func(), len(reloadHooks))
	copy(out, reloadHooks)
	return out
}
