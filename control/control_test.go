// control/control_test.go
// Author: momentics <momentics@gmail.com>
//
// Tests for the config store, metrics registry, and debug probes.

package control

import (
	"sync"
	"testing"

	"github.com/sugawarayuuta/sonnet"
)

func TestConfigStoreSetAndGet(t *testing.T) {
	cs := NewConfigStore()
	if _, ok := cs.Get("missing"); ok {
		t.Fatal("empty store reported a value")
	}
	cs.SetConfig(map[string]any{"period": int64(3_000_000), "policy": "skip-to-next-vsync"})
	v, ok := cs.Get("period")
	if !ok || v.(int64) != 3_000_000 {
		t.Fatalf("Get(period) = %v, %v", v, ok)
	}

	// Merging keeps unrelated keys.
	cs.SetConfig(map[string]any{"policy": "fire-immediate"})
	snap := cs.GetSnapshot()
	if snap["period"].(int64) != 3_000_000 || snap["policy"].(string) != "fire-immediate" {
		t.Fatalf("snapshot = %v", snap)
	}

	// The snapshot is a copy, not a view.
	snap["period"] = int64(0)
	if v, _ := cs.Get("period"); v.(int64) != 3_000_000 {
		t.Fatal("mutating a snapshot leaked into the store")
	}
}

func TestConfigStoreReloadListener(t *testing.T) {
	cs := NewConfigStore()
	var wg sync.WaitGroup
	wg.Add(1)
	cs.OnReload(func() { wg.Done() })
	cs.SetConfig(map[string]any{"k": 1})
	wg.Wait()
}

func TestMetricsCountersAndGauges(t *testing.T) {
	mr := NewMetricsRegistry()
	if got := mr.Counter("dispatch.fires"); got != 0 {
		t.Fatalf("absent counter = %d", got)
	}
	mr.Inc("dispatch.fires", 1)
	mr.Inc("dispatch.fires", 3)
	if got := mr.Counter("dispatch.fires"); got != 4 {
		t.Fatalf("counter = %d, want 4", got)
	}
	mr.Set("tracker.period", int64(16_666_667))

	snap := mr.GetSnapshot()
	if snap["dispatch.fires"].(int64) != 4 {
		t.Fatalf("snapshot counter = %v", snap["dispatch.fires"])
	}
	if snap["tracker.period"].(int64) != 16_666_667 {
		t.Fatalf("snapshot gauge = %v", snap["tracker.period"])
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	mr := NewMetricsRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				mr.Inc("hot", 1)
			}
		}()
	}
	wg.Wait()
	if got := mr.Counter("hot"); got != 8000 {
		t.Fatalf("counter = %d, want 8000", got)
	}
}

func TestDebugProbesDump(t *testing.T) {
	dp := NewDebugProbes()
	dp.RegisterProbe("pending", func() any { return 2 })
	dp.RegisterProbe("period", func() any { return int64(3_000_000) })

	state := dp.DumpState()
	if state["pending"].(int) != 2 {
		t.Fatalf("state = %v", state)
	}

	raw, err := dp.DumpJSON()
	if err != nil {
		t.Fatalf("DumpJSON: %v", err)
	}
	var decoded map[string]any
	if err := sonnet.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("round-trip: %v", err)
	}
	if decoded["pending"].(float64) != 2 {
		t.Fatalf("decoded = %v", decoded)
	}
}

func TestHotReloadSync(t *testing.T) {
	fired := 0
	RegisterReloadHook(func() { fired++ })
	TriggerHotReloadSync()
	if fired == 0 {
		t.Fatal("sync trigger did not run the hook")
	}
}

func TestHotReloadConcurrentRegisterAndTrigger(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				RegisterReloadHook(func() {})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				TriggerHotReloadSync()
			}
		}()
	}
	wg.Wait()
}
