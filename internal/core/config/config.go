// Package config provides configuration management for reportable.
package config

import (
	"fmt"
)

// Config holds engine and CLI configuration.
type Config struct {
	PathCacheSize int    // compiled-path LRU entries
	MaxConditions int    // per-rule condition ceiling advertised to authors
	MaxRecords    int    // record-set ceiling for one evaluation call
	Output        string // "json" or "pretty"
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		PathCacheSize: 512,
		MaxConditions: 64,
		MaxRecords:    10000,
		Output:        "json",
	}
}

// Validate checks positive limits and a known output format.
func (c *Config) Validate() error {
	if c.PathCacheSize <= 0 {
		return fmt.Errorf("path_cache_size must be positive, got %d", c.PathCacheSize)
	}
	if c.MaxConditions <= 0 {
		return fmt.Errorf("max_conditions must be positive, got %d", c.MaxConditions)
	}
	if c.MaxRecords <= 0 {
		return fmt.Errorf("max_records must be positive, got %d", c.MaxRecords)
	}
	if c.Output != "json" && c.Output != "pretty" {
		return fmt.Errorf("output must be json or pretty, got %q", c.Output)
	}
	return nil
}
