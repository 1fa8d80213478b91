package batch

import (
	"fmt"

	"github.com/bft-labs/copybatch/pkg/deepcopy"
	"github.com/bft-labs/copybatch/pkg/log"
)

// DefaultMaxItems is the auto-flush threshold used when Config.MaxItems is
// left zero.
const DefaultMaxItems = 64

// Config holds the construction-time configuration of a Batcher.
// Configuration is immutable after construction.
type Config struct {
	// MaxItems is the queue length at which Defer flushes automatically.
	// Zero means DefaultMaxItems; negative values are invalid.
	MaxItems int

	// MaxBytes is an advisory soft cap on the estimated footprint of
	// queued roots. Zero disables byte-based auto-flush. The estimate is
	// shallow; see deepcopy.SizeEstimate.
	MaxBytes int64

	// Consistency is the default snapshot mode for Defer, overridable
	// per call.
	Consistency Consistency

	// Alias is the default alias policy for Defer, overridable per call.
	Alias AliasPolicy
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		MaxItems:    DefaultMaxItems,
		Consistency: AtAccess,
		Alias:       Preserve,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.MaxItems == 0 {
		c.MaxItems = DefaultMaxItems
	}
	if c.MaxItems < 0 {
		return fmt.Errorf("%w: max-items must be positive, got %d", ErrInvalidConfig, c.MaxItems)
	}
	if c.MaxBytes < 0 {
		return fmt.Errorf("%w: max-bytes must not be negative, got %d", ErrInvalidConfig, c.MaxBytes)
	}
	return nil
}

// Option configures optional behavior of a Batcher.
type Option func(*options)

// options holds the optional dependencies of a Batcher.
type options struct {
	logger log.Logger
	copier deepcopy.Copier
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		copier: deepcopy.New(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithCopier sets a custom deep-copy capability. If not provided, the
// reflection-based deepcopy.ReflectCopier is used.
func WithCopier(copier deepcopy.Copier) Option {
	return func(o *options) {
		o.copier = copier
	}
}

// DeferOption overrides batcher-wide defaults for a single Defer call.
type DeferOption func(*deferOptions)

type deferOptions struct {
	consistency Consistency
	alias       AliasPolicy
}

// WithConsistency overrides the snapshot mode for this request.
func WithConsistency(c Consistency) DeferOption {
	return func(o *deferOptions) {
		o.consistency = c
	}
}

// WithAlias overrides the alias policy for this request.
func WithAlias(a AliasPolicy) DeferOption {
	return func(o *deferOptions) {
		o.alias = a
	}
}
