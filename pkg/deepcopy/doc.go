// Package deepcopy provides deep copying of arbitrary, possibly cyclic Go
// value graphs.
//
// The Copier interface is the capability consumed by the batching engine in
// pkg/batch; ReflectCopier is the default implementation. It traverses
// values with the reflect package and keeps a memo table keyed by source
// identity (dynamic type plus referent address), so:
//
//   - substructure shared among the roots of one CopyMany call is shared,
//     not duplicated, among the outputs, and
//   - cyclic graphs copy without non-termination, because each output
//     container is allocated and memoized before its contents are visited.
//
// # Usage
//
//	c := deepcopy.New()
//	cp, err := c.CopyOne(original)
//
// Or copy several roots in one traversal:
//
//	outs, err := c.CopyMany([]any{a, b, a})
//	// outs[0] == outs[2] when a is a reference kind
//
// # Limitations
//
// Channels, functions, and unsafe pointers cannot be copied; reaching one
// fails the whole call with ErrUncopyable. Structs are shallow-copied
// before their exported fields are deep-copied, so unexported reference
// fields keep pointing into the original graph.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package deepcopy
