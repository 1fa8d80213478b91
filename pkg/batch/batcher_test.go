package batch

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/bft-labs/copybatch/pkg/deepcopy"
)

func newTestBatcher(t *testing.T, cfg Config) *Batcher {
	t.Helper()
	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func mustGet(t *testing.T, b *Batcher, h *Handle) any {
	t.Helper()
	v, err := b.Get(h)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return v
}

func mapPtr(v any) uintptr {
	return reflect.ValueOf(v).Pointer()
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{MaxItems: -1}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for negative max-items, got %v", err)
	}
	if _, err := New(Config{MaxBytes: -1}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for negative max-bytes, got %v", err)
	}

	// Zero MaxItems picks up the default.
	b := newTestBatcher(t, Config{})
	if b.Config().MaxItems != DefaultMaxItems {
		t.Fatalf("expected default max-items %d, got %d", DefaultMaxItems, b.Config().MaxItems)
	}
}

func TestIdentityPreservation(t *testing.T) {
	b := newTestBatcher(t, DefaultConfig())

	src := map[string]int{"k": 1}
	h1 := b.Defer(src)
	h2 := b.Defer(src)

	v1 := mustGet(t, b, h1)
	v2 := mustGet(t, b, h2)

	if mapPtr(v1) != mapPtr(v2) {
		t.Fatal("preserve entries for one root resolved to distinct instances")
	}
	if mapPtr(v1) == mapPtr(src) {
		t.Fatal("resolved value aliases the source")
	}
	if !reflect.DeepEqual(v1, src) {
		t.Fatalf("resolved value not deep-equal to source: %v vs %v", v1, src)
	}
}

func TestForcedDistinctness(t *testing.T) {
	b := newTestBatcher(t, DefaultConfig())

	src := map[string]int{"k": 1}
	h1 := b.Defer(src, WithAlias(Duplicate))
	h2 := b.Defer(src, WithAlias(Duplicate))

	v1 := mustGet(t, b, h1)
	v2 := mustGet(t, b, h2)

	if mapPtr(v1) == mapPtr(v2) {
		t.Fatal("duplicate entries share an instance")
	}
	if mapPtr(v1) == mapPtr(src) || mapPtr(v2) == mapPtr(src) {
		t.Fatal("duplicate output aliases the source")
	}
	if !reflect.DeepEqual(v1, v2) || !reflect.DeepEqual(v1, src) {
		t.Fatal("duplicate outputs not deep-equal to source")
	}
}

func TestMixedPolicyIndependence(t *testing.T) {
	b := newTestBatcher(t, DefaultConfig())

	a := map[string]int{"which": 1}
	c := map[string]int{"which": 2}

	pa1 := b.Defer(a)
	pa2 := b.Defer(a)
	dc1 := b.Defer(c, WithAlias(Duplicate))
	dc2 := b.Defer(c, WithAlias(Duplicate))

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	va1 := mustGet(t, b, pa1)
	va2 := mustGet(t, b, pa2)
	vc1 := mustGet(t, b, dc1)
	vc2 := mustGet(t, b, dc2)

	if mapPtr(va1) != mapPtr(va2) {
		t.Fatal("preserve entries diverged in a mixed batch")
	}
	if mapPtr(vc1) == mapPtr(vc2) {
		t.Fatal("duplicate entries converged in a mixed batch")
	}
	for _, vc := range []any{vc1, vc2} {
		if mapPtr(vc) == mapPtr(va1) {
			t.Fatal("cross-contamination between preserve and duplicate outputs")
		}
		if !reflect.DeepEqual(vc, c) {
			t.Fatalf("duplicate output corrupted: %v", vc)
		}
	}
	if !reflect.DeepEqual(va1, a) {
		t.Fatalf("preserve output corrupted: %v", va1)
	}
}

func TestStrictSnapshotsAtDeferTime(t *testing.T) {
	b := newTestBatcher(t, DefaultConfig())

	src := map[string]int{"v": 1}
	h := b.Defer(src, WithConsistency(Strict))
	if !h.Ready() {
		t.Fatal("strict handle not ready immediately")
	}
	if b.Pending() != 0 {
		t.Fatal("strict entry entered the queue")
	}

	src["v"] = 2

	v := mustGet(t, b, h)
	if v.(map[string]int)["v"] != 1 {
		t.Fatalf("strict copy reflects post-defer mutation: %v", v)
	}
}

func TestAtAccessSnapshotsAtFlushTime(t *testing.T) {
	b := newTestBatcher(t, DefaultConfig())

	src := map[string]int{"v": 1}
	h := b.Defer(src)

	src["v"] = 2

	v := mustGet(t, b, h)
	if v.(map[string]int)["v"] != 2 {
		t.Fatalf("at-access copy missed pre-flush mutation: %v", v)
	}
}

func TestAutoFlushThreshold(t *testing.T) {
	b := newTestBatcher(t, Config{MaxItems: 2})

	h1 := b.Defer(map[string]int{"n": 1})
	if h1.Ready() {
		t.Fatal("flushed below threshold")
	}
	h2 := b.Defer(map[string]int{"n": 2})
	if !h1.Ready() || !h2.Ready() {
		t.Fatal("reaching the threshold did not flush")
	}

	h3 := b.Defer(map[string]int{"n": 3})
	if h3.Ready() {
		t.Fatal("third defer flushed on its own")
	}
	if b.Pending() != 1 {
		t.Fatalf("expected 1 pending entry, got %d", b.Pending())
	}
}

func TestAutoFlushMaxBytes(t *testing.T) {
	b := newTestBatcher(t, Config{MaxItems: 1 << 20, MaxBytes: 1})

	h := b.Defer(map[string]int{"n": 1})
	if !h.Ready() {
		t.Fatal("byte cap did not trigger a flush")
	}
	if b.QueuedBytes() != 0 {
		t.Fatalf("queued bytes not reset: %d", b.QueuedBytes())
	}
}

type ring struct {
	Name string
	Next *ring
}

func TestCycleSafety(t *testing.T) {
	b := newTestBatcher(t, DefaultConfig())

	src := &ring{Name: "root"}
	src.Next = src

	h := b.Defer(src)
	v := mustGet(t, b, h).(*ring)

	if v == src {
		t.Fatal("copy aliases the source")
	}
	if v.Next != v {
		t.Fatal("copy is not self-referential")
	}
}

func TestConcurrentQueuing(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 50

	b := newTestBatcher(t, Config{MaxItems: 1 << 20})

	handles := make([][]*Handle, goroutines)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			hs := make([]*Handle, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				hs[i] = b.Defer(map[string]int{"g": g, "i": i})
			}
			handles[g] = hs
		}(g)
	}
	wg.Wait()

	if got := b.Pending(); got != goroutines*perGoroutine {
		t.Fatalf("expected %d queued entries, got %d", goroutines*perGoroutine, got)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	for g := range handles {
		for i, h := range handles[g] {
			if !h.Ready() {
				t.Fatalf("handle %d/%d not ready after flush", g, i)
			}
			v := mustGet(t, b, h).(map[string]int)
			if v["g"] != g || v["i"] != i {
				t.Fatalf("handle %d/%d resolved to wrong value: %v", g, i, v)
			}
		}
	}
}

func TestFlushEmptyQueueNoop(t *testing.T) {
	b := newTestBatcher(t, DefaultConfig())
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush on empty queue: %v", err)
	}
}

func TestFlushFailureClearsQueue(t *testing.T) {
	b := newTestBatcher(t, DefaultConfig())

	good := b.Defer(map[string]int{"ok": 1})
	bad := b.Defer(map[string]any{"ch": make(chan int)})

	err := b.Flush()
	if !errors.Is(err, ErrFlushFailed) {
		t.Fatalf("expected ErrFlushFailed, got %v", err)
	}
	if !errors.Is(err, deepcopy.ErrUncopyable) {
		t.Fatalf("cause not preserved: %v", err)
	}
	var ferr *FlushError
	if !errors.As(err, &ferr) || ferr.Entries != 2 {
		t.Fatalf("expected FlushError over 2 entries, got %v", err)
	}
	if b.Pending() != 0 {
		t.Fatalf("queue not cleared after failure: %d pending", b.Pending())
	}

	// No partial success: the unrelated entry failed with the batch, and
	// both handles report the cause instead of retrying.
	for _, h := range []*Handle{good, bad} {
		if h.Ready() {
			t.Fatal("handle resolved despite failed flush")
		}
		if _, gerr := b.Get(h); !errors.Is(gerr, ErrFlushFailed) {
			t.Fatalf("expected ErrFlushFailed from Get, got %v", gerr)
		}
	}

	// The batcher stays usable for later batches.
	h := b.Defer(map[string]int{"ok": 2})
	if v := mustGet(t, b, h); v.(map[string]int)["ok"] != 2 {
		t.Fatalf("batcher unusable after failed flush: %v", v)
	}
}

func TestStrictCopyFailure(t *testing.T) {
	b := newTestBatcher(t, DefaultConfig())

	h := b.Defer(make(chan int), WithConsistency(Strict))
	if h.Ready() {
		t.Fatal("failed strict handle reports ready")
	}
	if _, err := b.Get(h); !errors.Is(err, deepcopy.ErrUncopyable) {
		t.Fatalf("expected ErrUncopyable, got %v", err)
	}
}

func TestEndToEndDefaults(t *testing.T) {
	b := newTestBatcher(t, DefaultConfig())

	lst := []int{1, 2, 3}
	h1 := b.Defer(lst)
	h2 := b.Defer(lst, WithAlias(Duplicate))
	h3 := b.Defer(lst)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	v1 := mustGet(t, b, h1).([]int)
	v2 := mustGet(t, b, h2).([]int)
	v3 := mustGet(t, b, h3).([]int)

	if &v1[0] != &v3[0] {
		t.Fatal("preserve entries for one list resolved to distinct instances")
	}
	if &v2[0] == &v1[0] || &v2[0] == &lst[0] {
		t.Fatal("duplicate output aliases another instance")
	}
	if &v1[0] == &lst[0] {
		t.Fatal("resolved value aliases the source")
	}
	for _, v := range [][]int{v1, v2, v3} {
		if !reflect.DeepEqual(v, lst) {
			t.Fatalf("resolved value corrupted: %v", v)
		}
	}
}

func TestGetUnknownHandle(t *testing.T) {
	b := newTestBatcher(t, DefaultConfig())

	if _, err := b.Get(&Handle{}); !errors.Is(err, ErrUnknownHandle) {
		t.Fatalf("expected ErrUnknownHandle, got %v", err)
	}
}

func TestValueKindsNeverDedup(t *testing.T) {
	b := newTestBatcher(t, DefaultConfig())

	h1 := b.Defer(7)
	h2 := b.Defer(7)

	v1 := mustGet(t, b, h1)
	v2 := mustGet(t, b, h2)
	if v1 != 7 || v2 != 7 {
		t.Fatalf("scalar copies corrupted: %v, %v", v1, v2)
	}
}
