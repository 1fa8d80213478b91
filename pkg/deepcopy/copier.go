package deepcopy

import "errors"

// ErrUncopyable is returned when a value cannot be deep-copied.
// Channels, functions, and unsafe pointers have no meaningful copy;
// encountering one anywhere in a graph fails the whole call.
var ErrUncopyable = errors.New("deepcopy: uncopyable value")

// Copier produces deep copies of arbitrary object graphs.
//
// Implementations must satisfy the batching contract:
//   - CopyMany returns outputs of the same length and order as its inputs.
//   - Each output deep-equals its input.
//   - Referentially identical inputs map to referentially identical outputs.
//   - Cyclic structures terminate and produce isomorphic cyclic copies.
//   - A value that cannot be copied fails the whole call with no partial
//     results.
type Copier interface {
	// CopyOne deep-copies a single root. Equivalent to CopyMany([]any{root})[0].
	CopyOne(root any) (any, error)

	// CopyMany deep-copies a batch of roots in one traversal, sharing one
	// memo table so aliasing among the roots carries over to the outputs.
	CopyMany(roots []any) ([]any, error)
}
