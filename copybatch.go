// Package copybatch batches deferred deep-copy requests and resolves them
// together in one underlying traversal.
//
// Example usage:
//
//	b, err := copybatch.New(copybatch.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h := b.Defer(graph)
//	cp, err := b.Get(h) // flushes every pending entry in one batch
package copybatch

import (
	"github.com/bft-labs/copybatch/pkg/batch"
	"github.com/bft-labs/copybatch/pkg/deepcopy"
)

// Batcher defers deep-copy requests and resolves them together.
type Batcher = batch.Batcher

// Handle is a token for one pending-or-resolved copy result.
type Handle = batch.Handle

// Config holds the construction-time configuration of a Batcher.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = batch.Config

// Option configures optional behavior of a Batcher.
type Option = batch.Option

// DeferOption overrides batcher-wide defaults for a single Defer call.
type DeferOption = batch.DeferOption

// Copier is the deep-copy capability consumed by the Batcher.
type Copier = deepcopy.Copier

// Consistency selects when the snapshot of a deferred root is taken.
type Consistency = batch.Consistency

// AliasPolicy controls output sharing for repeated roots within a batch.
type AliasPolicy = batch.AliasPolicy

// Consistency and alias policy values, re-exported for convenience.
const (
	AtAccess  = batch.AtAccess
	Strict    = batch.Strict
	Preserve  = batch.Preserve
	Duplicate = batch.Duplicate
)

// New creates a Batcher with the given configuration.
func New(cfg Config, opts ...Option) (*Batcher, error) {
	return batch.New(cfg, opts...)
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return batch.DefaultConfig()
}

// DeferProxy enqueues a deferred deep copy and returns a lazy proxy that
// forces a full batch flush on first observable use.
func DeferProxy[T any](b *Batcher, root T, opts ...DeferOption) *batch.Proxy[T] {
	return batch.DeferProxy(b, root, opts...)
}

// NewCopier returns the default reflection-based deep-copy capability.
func NewCopier() Copier {
	return deepcopy.New()
}

// WithConsistency overrides the snapshot mode for one Defer call.
func WithConsistency(c Consistency) DeferOption {
	return batch.WithConsistency(c)
}

// WithAlias overrides the alias policy for one Defer call.
func WithAlias(a AliasPolicy) DeferOption {
	return batch.WithAlias(a)
}
