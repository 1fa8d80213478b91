// Package batch amortizes the cost of many independent deep copies by
// batching deferred copy requests into a single underlying traversal.
//
// Each Defer enqueues a root without copying it and returns a Handle. A
// flush — explicit, threshold-triggered, or forced by any read through a
// Handle or Proxy — invokes the deep-copy capability once over the
// deduplicated set of queued roots and fans the results back out. Roots
// reachable from multiple entries in one batch are copied once and shared
// by reference in the outputs, unless an entry asks for Duplicate outputs.
//
// # Usage
//
//	b, err := batch.New(batch.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	h1 := b.Defer(cfg)                              // queued, not copied yet
//	h2 := b.Defer(cfg, batch.WithAlias(batch.Duplicate))
//
//	v1, err := b.Get(h1) // flushes the whole batch
//	v2, err := b.Get(h2) // already resolved, distinct instance
//
// Or use the lazy proxy front end:
//
//	p := batch.DeferProxy(b, cfg)
//	if !p.Ready() { ... }    // inspect without forcing
//	v, err := p.Value()      // forces a full flush on first use
//
// # Consistency
//
// AtAccess (the default) snapshots at flush time; Strict snapshots at
// Defer time and never enters the queue.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package batch
