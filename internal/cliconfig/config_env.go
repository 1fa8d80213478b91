package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (COPYBATCH_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	if err := s.setIntFromString("graphs", os.Getenv("COPYBATCH_GRAPHS"), &cfg.Graphs); err != nil {
		return err
	}
	if err := s.setIntFromString("rounds", os.Getenv("COPYBATCH_ROUNDS"), &cfg.Rounds); err != nil {
		return err
	}
	if err := s.setInt64FromString("seed", os.Getenv("COPYBATCH_SEED"), &cfg.Seed); err != nil {
		return err
	}
	if err := s.setIntFromString("max-items", os.Getenv("COPYBATCH_MAX_ITEMS"), &cfg.MaxItems); err != nil {
		return err
	}
	if err := s.setInt64FromString("max-bytes", os.Getenv("COPYBATCH_MAX_BYTES"), &cfg.MaxBytes); err != nil {
		return err
	}

	s.setString("consistency", os.Getenv("COPYBATCH_CONSISTENCY"), &cfg.Consistency)
	s.setString("alias", os.Getenv("COPYBATCH_ALIAS"), &cfg.Alias)
	s.setBoolFromString("verbose", os.Getenv("COPYBATCH_VERBOSE"), &cfg.Verbose)

	return nil
}
