package batch

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/bft-labs/copybatch/pkg/deepcopy"
	"github.com/bft-labs/copybatch/pkg/log"
)

// pending is one queued copy request: the handle that will receive the
// result, the source root, and the alias policy captured at enqueue time.
type pending struct {
	handle *Handle
	root   any
	alias  AliasPolicy
}

// Batcher defers deep-copy requests and resolves them together in one
// underlying traversal per flush.
//
// All methods are safe for concurrent use. One mutex covers queue mutation
// and the whole flush body, including the Copier invocation: the copier is
// not assumed safe to run concurrently on overlapping inputs, and the
// dedup table must see a consistent queue snapshot. Invariant: the queue
// never contains an entry whose handle is already settled.
type Batcher struct {
	cfg    Config
	logger log.Logger
	copier deepcopy.Copier

	mu          sync.Mutex
	queue       []pending
	queuedBytes int64
}

// New creates a Batcher with the given configuration.
// Invalid configuration fails here, not at first use.
func New(cfg Config, opts ...Option) (*Batcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Batcher{
		cfg:    cfg,
		logger: o.logger,
		copier: o.copier,
	}, nil
}

// Config returns the batcher's configuration.
func (b *Batcher) Config() Config {
	return b.cfg
}

// Defer enqueues a deep-copy request without performing it yet and returns
// a handle that will receive the copy at flush time.
//
// With Strict consistency (per call or batcher-wide) the root is copied
// immediately, the handle is returned already settled, and the request
// never enters the queue; later mutation of the root is not reflected.
//
// Defer never returns an error. A copy failure on the strict path or
// inside an auto-flush is recorded on the affected handles and reported by
// Get.
func (b *Batcher) Defer(root any, opts ...DeferOption) *Handle {
	o := deferOptions{consistency: b.cfg.Consistency, alias: b.cfg.Alias}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Handle{}

	if o.consistency == Strict {
		v, err := b.copier.CopyOne(root)
		if err != nil {
			err = fmt.Errorf("copybatch: strict copy: %w", err)
			b.logger.Error("strict copy failed", log.Err(err))
		}
		h.settle(v, err)
		return h
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue = append(b.queue, pending{handle: h, root: root, alias: o.alias})
	b.queuedBytes += deepcopy.SizeEstimate(root)
	if b.shouldFlushLocked() {
		if err := b.flushLocked(); err != nil {
			// Surfaced through the affected handles; Defer itself cannot fail.
			b.logger.Warn("auto-flush failed", log.Err(err))
		}
	}
	return h
}

// Get resolves one handle and returns its materialized deep copy.
//
// If the handle is still pending, Get flushes the entire queue, not merely
// this handle's entry: a single access anywhere in a pending batch
// resolves the whole batch.
func (b *Batcher) Get(h *Handle) (any, error) {
	if h.settled() {
		return h.value, h.err
	}
	if err := b.Flush(); err != nil && !h.settled() {
		return nil, err
	}
	if !h.settled() {
		return nil, ErrUnknownHandle
	}
	return h.value, h.err
}

// Flush forces resolution of every currently queued entry with exactly one
// Copier batch invocation over the deduplicated set of queued roots.
// No-op if the queue is empty.
func (b *Batcher) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return nil
	}
	return b.flushLocked()
}

// Pending returns the number of queued, unresolved entries.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// QueuedBytes returns the advisory footprint estimate of the queue.
func (b *Batcher) QueuedBytes() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queuedBytes
}

// shouldFlushLocked decides whether Defer should auto-flush now.
func (b *Batcher) shouldFlushLocked() bool {
	if len(b.queue) >= b.cfg.MaxItems {
		return true
	}
	if b.cfg.MaxBytes > 0 && b.queuedBytes >= b.cfg.MaxBytes {
		return true
	}
	return false
}

// flushLocked resolves the current queue in one batch. Must be called with
// b.mu held and a non-empty queue. Public entry points lock and delegate
// here; the auto-flush path inside Defer calls this directly, so no
// reentrant locking is ever needed.
//
// Entries are partitioned by alias policy, preserving relative order
// within each partition. Duplicate entries get an individual CopyOne each,
// so their outputs are distinct even when they share a source identity.
// Preserve entries are deduplicated by referential identity into a single
// CopyMany call whose outputs fan back out, so entries that shared
// identity receive the same output reference. The split keeps the
// always-distinct guarantee independent of incidental aliasing among
// preserve items and scopes the identity table to where it is needed.
func (b *Batcher) flushLocked() error {
	queue := b.queue

	var dups, pres []pending
	for _, e := range queue {
		if e.alias == Duplicate {
			dups = append(dups, e)
		} else {
			pres = append(pres, e)
		}
	}

	dupOuts := make([]any, len(dups))
	for i, e := range dups {
		v, err := b.copier.CopyOne(e.root)
		if err != nil {
			return b.failLocked(queue, err)
		}
		dupOuts[i] = v
	}

	// Dedup preserve roots by referential identity: first occurrence claims
	// an input slot, repeats reuse its index.
	var inputs []any
	slot := make([]int, len(pres))
	seen := make(map[identityKey]int)
	for i, e := range pres {
		if k, ok := identityOf(e.root); ok {
			if j, dup := seen[k]; dup {
				slot[i] = j
				continue
			}
			seen[k] = len(inputs)
		}
		slot[i] = len(inputs)
		inputs = append(inputs, e.root)
	}

	var presOuts []any
	if len(inputs) > 0 {
		var err error
		presOuts, err = b.copier.CopyMany(inputs)
		if err != nil {
			return b.failLocked(queue, err)
		}
	}

	// Everything copied; settle handles and clear the queue.
	for i, e := range dups {
		e.handle.settle(dupOuts[i], nil)
	}
	for i, e := range pres {
		e.handle.settle(presOuts[slot[i]], nil)
	}
	b.queue = nil
	b.queuedBytes = 0
	b.logger.Debug("flush resolved",
		log.Int("entries", len(queue)),
		log.Int("unique_roots", len(inputs)+len(dups)))
	return nil
}

// failLocked discards the queue after a copy failure. No entry is
// resolved; every handle records the flush error so later Gets report the
// cause instead of retrying a root that would fail identically again.
func (b *Batcher) failLocked(queue []pending, cause error) error {
	ferr := &FlushError{Entries: len(queue), Err: cause}
	for _, e := range queue {
		e.handle.settle(nil, ferr)
	}
	b.queue = nil
	b.queuedBytes = 0
	b.logger.Error("flush failed",
		log.Int("entries", len(queue)),
		log.Err(cause))
	return ferr
}

// identityKey identifies a root by dynamic type and referent address.
// Slices carry their length: two headers over one array with different
// lengths are distinct values.
type identityKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

// identityOf returns the referential identity of a root, or ok=false for
// value kinds (ints, strings, struct values, nil), which have no stable
// address inside an interface and therefore never dedup under Preserve.
func identityOf(root any) (identityKey, bool) {
	v := reflect.ValueOf(root)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return identityKey{typ: v.Type(), ptr: v.Pointer()}, true
	case reflect.Slice:
		return identityKey{typ: v.Type(), ptr: v.Pointer(), len: v.Len()}, true
	}
	return identityKey{}, false
}
