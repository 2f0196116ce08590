package safescript

import (
	"errors"
	"fmt"
	"io"

	"github.com/safescript/safescript/backend"
	"gopkg.in/yaml.v3"
)

// Config holds runtime settings that can be loaded from a file. Zero fields
// keep the builder's current setting.
type Config struct {
	// Backend is one of "interpreter", "vm" or "transformer".
	Backend string `yaml:"backend" json:"backend,omitempty"`

	// Corelib disables the core library when set to false.
	Corelib *bool `yaml:"corelib" json:"corelib,omitempty"`

	MaxCallDepth         int    `yaml:"max_call_depth" json:"max_call_depth,omitempty"`
	MaxParseDepth        int    `yaml:"max_parse_depth" json:"max_parse_depth,omitempty"`
	ContextCheckInterval int    `yaml:"context_check_interval" json:"context_check_interval,omitempty"`
	Filename             string `yaml:"filename" json:"filename,omitempty"`
}

// Validate checks the config for invalid values.
func (c Config) Validate() error {
	if c.Backend != "" {
		if _, err := backend.ParseKind(c.Backend); err != nil {
			return err
		}
	}
	if c.MaxCallDepth < 0 {
		return fmt.Errorf("max_call_depth must not be negative (got %d)", c.MaxCallDepth)
	}
	if c.MaxParseDepth < 0 {
		return fmt.Errorf("max_parse_depth must not be negative (got %d)", c.MaxParseDepth)
	}
	if c.ContextCheckInterval < 0 {
		return fmt.Errorf("context_check_interval must not be negative (got %d)", c.ContextCheckInterval)
	}
	return nil
}

// LoadConfig reads a YAML config. Unknown fields are rejected. An empty
// document yields the zero Config.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
