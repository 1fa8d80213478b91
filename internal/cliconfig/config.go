package cliconfig

import (
	"fmt"
	"strconv"

	"github.com/bft-labs/copybatch/pkg/batch"
)

// Config holds CLI configuration for the copybatch soak checker.
type Config struct {
	Graphs int
	Rounds int
	Seed   int64

	MaxItems    int
	MaxBytes    int64
	Consistency string
	Alias       string

	Verbose bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Graphs:      32,
		Rounds:      8,
		Seed:        1,
		MaxItems:    batch.DefaultMaxItems,
		Consistency: batch.AtAccess.String(),
		Alias:       batch.Preserve.String(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Graphs <= 0 {
		return fmt.Errorf("graphs must be positive")
	}
	if c.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive")
	}
	if c.MaxItems <= 0 {
		return fmt.Errorf("max-items must be positive")
	}
	if c.MaxBytes < 0 {
		return fmt.Errorf("max-bytes must not be negative")
	}
	if _, err := batch.ParseConsistency(c.Consistency); err != nil {
		return fmt.Errorf("consistency: %q is not at-access or strict", c.Consistency)
	}
	if _, err := batch.ParseAliasPolicy(c.Alias); err != nil {
		return fmt.Errorf("alias: %q is not preserve or duplicate", c.Alias)
	}
	return nil
}

// BatchConfig converts the validated CLI configuration into the library's
// batcher configuration.
func (c *Config) BatchConfig() (batch.Config, error) {
	consistency, err := batch.ParseConsistency(c.Consistency)
	if err != nil {
		return batch.Config{}, err
	}
	alias, err := batch.ParseAliasPolicy(c.Alias)
	if err != nil {
		return batch.Config{}, err
	}
	return batch.Config{
		MaxItems:    c.MaxItems,
		MaxBytes:    c.MaxBytes,
		Consistency: consistency,
		Alias:       alias,
	}, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt64 sets an int64 value if positive and flag not changed.
func (s *configSetter) setInt64(flag string, value int64, dst *int64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setInt64FromString parses a string to int64 and sets the destination if valid.
func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination if valid.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	if b, err := strconv.ParseBool(value); err == nil {
		*dst = b
	}
}
