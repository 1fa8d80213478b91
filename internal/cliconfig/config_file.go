package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with TOML field names.
type FileConfig struct {
	Graphs      int    `toml:"graphs"`
	Rounds      int    `toml:"rounds"`
	Seed        int64  `toml:"seed"`
	MaxItems    int    `toml:"max_items"`
	MaxBytes    int64  `toml:"max_bytes"`
	Consistency string `toml:"consistency"`
	Alias       string `toml:"alias"`
	Verbose     *bool  `toml:"verbose"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.copybatch/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".copybatch", "config.toml")
	}
	return ""
}

// FileExists reports whether path names an existing file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setInt("graphs", fc.Graphs, &cfg.Graphs)
	s.setInt("rounds", fc.Rounds, &cfg.Rounds)
	s.setInt64("seed", fc.Seed, &cfg.Seed)
	s.setInt("max-items", fc.MaxItems, &cfg.MaxItems)
	s.setInt64("max-bytes", fc.MaxBytes, &cfg.MaxBytes)
	s.setString("consistency", fc.Consistency, &cfg.Consistency)
	s.setString("alias", fc.Alias, &cfg.Alias)
	s.setBool("verbose", fc.Verbose, &cfg.Verbose)

	return nil
}
