package batch

import "fmt"

// Consistency selects when the snapshot of a deferred root is taken.
type Consistency int

const (
	// AtAccess snapshots at flush time: mutations of the root between
	// Defer and the flush are reflected in the copy. This is the mode
	// that enables batching.
	AtAccess Consistency = iota

	// Strict snapshots at Defer time. The request is copied immediately,
	// never enters the queue, and is frozen at call time.
	Strict
)

// String returns the textual form used in configuration.
func (c Consistency) String() string {
	switch c {
	case AtAccess:
		return "at-access"
	case Strict:
		return "strict"
	default:
		return fmt.Sprintf("consistency(%d)", int(c))
	}
}

// ParseConsistency parses the textual form of a consistency mode.
func ParseConsistency(s string) (Consistency, error) {
	switch s {
	case "at-access", "at_access":
		return AtAccess, nil
	case "strict":
		return Strict, nil
	}
	return AtAccess, fmt.Errorf("%w: unknown consistency %q", ErrInvalidConfig, s)
}

// AliasPolicy controls whether repeated references to the same root within
// one batch share a single output copy or receive independent copies.
type AliasPolicy int

const (
	// Preserve maps every occurrence of one root identity within a batch
	// to a single shared output instance.
	Preserve AliasPolicy = iota

	// Duplicate forces a distinct output instance per entry, even when
	// entries share the same source identity.
	Duplicate
)

// String returns the textual form used in configuration.
func (a AliasPolicy) String() string {
	switch a {
	case Preserve:
		return "preserve"
	case Duplicate:
		return "duplicate"
	default:
		return fmt.Sprintf("alias(%d)", int(a))
	}
}

// ParseAliasPolicy parses the textual form of an alias policy.
func ParseAliasPolicy(s string) (AliasPolicy, error) {
	switch s {
	case "preserve":
		return Preserve, nil
	case "duplicate":
		return Duplicate, nil
	}
	return Preserve, fmt.Errorf("%w: unknown alias policy %q", ErrInvalidConfig, s)
}
