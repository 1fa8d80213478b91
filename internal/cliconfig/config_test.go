package cliconfig

import (
	"testing"

	"github.com/bft-labs/copybatch/pkg/batch"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero graphs", func(c *Config) { c.Graphs = 0 }},
		{"negative rounds", func(c *Config) { c.Rounds = -1 }},
		{"zero max-items", func(c *Config) { c.MaxItems = 0 }},
		{"negative max-bytes", func(c *Config) { c.MaxBytes = -1 }},
		{"bad consistency", func(c *Config) { c.Consistency = "eventually" }},
		{"bad alias", func(c *Config) { c.Alias = "sometimes" }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestBatchConfigConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxItems = 7
	cfg.MaxBytes = 1024
	cfg.Consistency = "strict"
	cfg.Alias = "duplicate"

	bc, err := cfg.BatchConfig()
	if err != nil {
		t.Fatalf("BatchConfig: %v", err)
	}
	if bc.MaxItems != 7 || bc.MaxBytes != 1024 {
		t.Fatalf("thresholds not carried: %+v", bc)
	}
	if bc.Consistency != batch.Strict {
		t.Fatalf("expected strict, got %v", bc.Consistency)
	}
	if bc.Alias != batch.Duplicate {
		t.Fatalf("expected duplicate, got %v", bc.Alias)
	}
}
