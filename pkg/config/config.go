// Package config holds run configuration: the project root, the ordered
// include search path, exclusion patterns, and the confidence threshold.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for incdep.
type Config struct {
	// Search lists additional include directories, in resolution order.
	Search SearchConfig `koanf:"search"`

	// Exclude controls which files and directories are skipped.
	Exclude ExcludeConfig `koanf:"exclude"`

	// Plan controls removal planning.
	Plan PlanConfig `koanf:"plan"`

	// Output controls output formatting.
	Output OutputConfig `koanf:"output"`

	// Jobs caps the scan worker count; 0 means 2x NumCPU.
	Jobs int `koanf:"jobs"`
}

// SearchConfig defines the include search path.
type SearchConfig struct {
	// Dirs are searched in order after the including file's own
	// directory (for quoted includes) or on their own (for angle form).
	// Relative entries are resolved against the project root.
	Dirs []string `koanf:"dirs"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns"`
	Dirs      []string `koanf:"dirs"`
	Gitignore bool     `koanf:"gitignore"`
}

// PlanConfig defines removal-planning thresholds.
type PlanConfig struct {
	// MinConfidence is the threshold below which redundant verdicts are
	// reported but not auto-removable.
	MinConfidence float64 `koanf:"min_confidence"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown, toon, yaml
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{},
		Exclude: ExcludeConfig{
			Dirs: []string{
				".git",
				"build",
				"cmake-build-debug",
				"cmake-build-release",
				"node_modules",
			},
			Gitignore: true,
		},
		Plan: PlanConfig{
			MinConfidence: 0.8,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file and validates it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := validate(k.Raw()); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard file names under root or returns defaults.
func LoadOrDefault(root string) *Config {
	names := []string{
		"incdep.toml",
		"incdep.yaml",
		"incdep.yml",
		"incdep.json",
		".incdep.toml",
		".incdep.yaml",
		".incdep.yml",
		".incdep.json",
	}
	for _, name := range names {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			if cfg, err := Load(path); err == nil {
				return cfg
			}
		}
	}
	return DefaultConfig()
}
