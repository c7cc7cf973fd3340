// Package config loads cfgdot settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no file is given.
const DefaultFile = ".cfgdot.yaml"

// Config holds the user-configurable settings. Command-line flags override
// values loaded from a file.
type Config struct {
	Prefix   string `yaml:"prefix"`   // output filename prefix, "" for none
	OutDir   string `yaml:"out_dir"`  // directory for .dot files
	Func     string `yaml:"func"`     // regexp selecting functions by name
	Overview bool   `yaml:"overview"` // also write lattice overview graphs
	Verbose  bool   `yaml:"verbose"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{OutDir: "."}
}

// Load reads path on top of Default. An empty path tries DefaultFile and
// silently falls back to defaults if it does not exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	return cfg, nil
}
