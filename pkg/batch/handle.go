package batch

import "sync/atomic"

// Handle is an opaque token for one pending-or-resolved copy result.
//
// A handle is created empty by Defer and settled exactly once: either by
// the flush that processes its entry, or immediately for strict-consistency
// requests. It is never reset. The done flag is atomic so Get's fast path
// needs no lock; value and err are written before done is set and read only
// after done is observed.
type Handle struct {
	value any
	err   error
	done  atomic.Bool
}

// Ready reports whether the handle has resolved successfully. It never
// forces a flush, so it can answer a "materialized?" query for a pending
// batch without resolving it.
func (h *Handle) Ready() bool {
	return h.done.Load() && h.err == nil
}

// settled reports whether the handle holds a value or an error.
func (h *Handle) settled() bool {
	return h.done.Load()
}

// settle records the outcome. Called at most once, under the batcher lock
// or before the handle escapes Defer.
func (h *Handle) settle(value any, err error) {
	h.value = value
	h.err = err
	h.done.Store(true)
}
