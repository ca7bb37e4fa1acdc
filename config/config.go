// Package config loads the driver's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Output formats the driver understands.
const (
	FormatPlain = "plain"
	FormatTable = "table"
)

// Config is the driver configuration. Command-line flags override any field.
type Config struct {
	KB struct {
		// Path points at a knowledge-base JSON document.
		Path string `yaml:"path"`
		// Snapshot points at a compiled snapshot store; it wins over
		// Path when both are set.
		Snapshot string `yaml:"snapshot"`
	} `yaml:"kb"`

	Engine struct {
		IgnoreErrors bool `yaml:"ignore_errors"`
		Trace        bool `yaml:"trace"`
	} `yaml:"engine"`

	Output struct {
		Format string `yaml:"format"`
	} `yaml:"output"`
}

// Load reads and validates the YAML configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg holds a coherent set of values, returning a
// joined error listing every failure found.
func Validate(cfg *Config) error {
	var errs []error
	if cfg.Output.Format != "" && cfg.Output.Format != FormatPlain && cfg.Output.Format != FormatTable {
		errs = append(errs, fmt.Errorf("output.format %q is invalid; valid values: plain, table", cfg.Output.Format))
	}
	if cfg.KB.Path == "" && cfg.KB.Snapshot == "" {
		errs = append(errs, errors.New("one of kb.path or kb.snapshot is required"))
	}
	return errors.Join(errs...)
}
