package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the project configuration read from tlang.yaml or tlang.toml.
type Config struct {
	// MaxCallDepth limits nested function calls in the interpreter.
	MaxCallDepth int `yaml:"max_call_depth" toml:"max_call_depth"`

	// Color controls colored diagnostics: auto, always or never.
	Color string `yaml:"color" toml:"color"`

	// Trace logs every function call made by the interpreter.
	Trace bool `yaml:"trace" toml:"trace"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		MaxCallDepth: DefaultMaxCallDepth,
		Color:        ColorAuto,
	}
}

// FindAndLoad searches startDir and its parents for a config file and loads it.
// The returned path is empty when the defaults were used.
func FindAndLoad(startDir string) (*Config, string, error) {
	configPath := FindConfigFile(startDir)
	if configPath == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, "", nil
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, "", err
	}
	return cfg, configPath, nil
}

// FindConfigFile walks up from startDir looking for tlang.yaml, then tlang.toml.
func FindConfigFile(startDir string) string {
	dir := startDir
	for {
		for _, name := range []string{YAMLConfigFile, TOMLConfigFile} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads a config file. The format is chosen by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes config content. The path selects the format and is used in errors.
func Parse(data []byte, path string) (*Config, error) {
	cfg := DefaultConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// Validate checks field values and fills in defaults for zero values.
func (c *Config) Validate() error {
	if c.MaxCallDepth < 0 {
		return fmt.Errorf("max_call_depth must not be negative, got %d", c.MaxCallDepth)
	}
	if c.MaxCallDepth == 0 {
		c.MaxCallDepth = DefaultMaxCallDepth
	}

	switch c.Color {
	case "":
		c.Color = ColorAuto
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be one of auto, always, never; got %q", c.Color)
	}
	return nil
}

func (c *Config) applyEnv() {
	if os.Getenv("TLANG_TRACE") == "1" {
		c.Trace = true
	}
}
