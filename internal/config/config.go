// Package config loads chromosctl settings from embedded defaults overlaid by
// an optional YAML file.
package config

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"chromos/internal/crossover"
	"chromos/internal/rng"
	"chromos/internal/storage"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Store     StoreConfig      `yaml:"store"`
	Crossover crossover.Params `yaml:"crossover"`
	Log       LogConfig        `yaml:"log"`
	Seed      SeedConfig       `yaml:"seed"`
}

type StoreConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SeedConfig selects the random source. A zero Value with an empty Phrase
// draws a fresh seed per breed; the drawn seed is recorded in the lineage.
type SeedConfig struct {
	RNG    string `yaml:"rng"`
	Value  uint64 `yaml:"value"`
	Phrase string `yaml:"phrase"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load reads path over the embedded defaults. An empty path yields the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := cfg.Merge(data); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays YAML data; only keys present in data change.
func (c *Config) Merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Kind {
	case storage.KindMemory, storage.KindFile, storage.KindBadger, storage.KindSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.kind: unsupported backend %q", c.Store.Kind))
	}
	switch c.Seed.RNG {
	case rng.KindPCG, rng.KindChaCha:
	default:
		errs = append(errs, fmt.Errorf("seed.rng: unsupported source %q", c.Seed.RNG))
	}
	if err := c.Crossover.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("crossover: %w", err))
	}
	return errors.Join(errs...)
}

// BaseSeed resolves the configured seed: the explicit value, else a digest of
// the phrase, else zero meaning "draw one".
func (c *Config) BaseSeed() uint64 {
	if c.Seed.Value != 0 {
		return c.Seed.Value
	}
	if c.Seed.Phrase != "" {
		sum := rng.SeedFromString(c.Seed.Phrase)
		return binary.LittleEndian.Uint64(sum[:8])
	}
	return 0
}

// WriteYAML saves the effective configuration.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
