package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const (
	// DefaultFile is the default filename looked up in the working directory.
	DefaultFile = ".json-split.json"

	// DefaultMaxSizeMB is the chunk size cap used when nothing else is set.
	DefaultMaxSizeMB = 24
)

// Config captures the defaults applied to every split run. An empty OutputDir
// places chunks next to the input file.
type Config struct {
	MaxSizeMB float64 `json:"maxSizeMB" validate:"gt=0"`
	Indent    int     `json:"indent" validate:"gte=0,lte=8"`
	Format    string  `json:"format" validate:"oneof=json jsonl"`
	OutputDir string  `json:"outputDir,omitempty"`
	LogLevel  string  `json:"logLevel,omitempty" validate:"omitempty,oneof=trace debug info warn error off"`
	LogFormat string  `json:"logFormat,omitempty" validate:"omitempty,oneof=console json"`
}

// Load reads configuration from the provided path. Fields absent from the file
// keep their Default values. If the file does not exist, os.ErrNotExist is
// returned to allow callers to initialise defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the configuration to disk, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Default creates a configuration with the stock settings.
func Default() Config {
	return Config{
		MaxSizeMB: DefaultMaxSizeMB,
		Indent:    2,
		Format:    "json",
		LogLevel:  "warn",
		LogFormat: "console",
	}
}

// LoadOrDefault loads and validates path, falling back to Default when it
// does not exist.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
