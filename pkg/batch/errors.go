package batch

import (
	"errors"
	"fmt"
)

// Package errors for the batching engine.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidConfig is returned when configuration validation fails at
	// construction time.
	ErrInvalidConfig = errors.New("copybatch: invalid configuration")

	// ErrFlushFailed matches any *FlushError via errors.Is.
	ErrFlushFailed = errors.New("copybatch: flush failed")

	// ErrUnknownHandle is returned by Get for a handle this batcher never
	// issued. A handle issued by Defer is always resolved by the flush
	// that Get triggers.
	ErrUnknownHandle = errors.New("copybatch: handle not issued by this batcher")

	// ErrNotIndexable is returned by proxy container operations when the
	// resolved value does not support them.
	ErrNotIndexable = errors.New("copybatch: resolved value does not support indexed access")
)

// FlushError reports a failed flush. The queue is cleared: none of the
// entries in the failed flush are resolved, and each of their handles
// records this error so later Gets fail with the same cause instead of
// retrying a root that would fail identically again.
type FlushError struct {
	// Entries is the number of queued entries discarded by the failure.
	Entries int

	// Err is the underlying copy failure.
	Err error
}

// Error implements the error interface.
func (e *FlushError) Error() string {
	return fmt.Sprintf("copybatch: flush of %d entries failed: %v", e.Entries, e.Err)
}

// Unwrap returns the underlying copy failure.
func (e *FlushError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFlushFailed.
func (e *FlushError) Is(target error) bool {
	return target == ErrFlushFailed
}
