// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the distforge
// CLI.
//
// Configuration is loaded from a single YAML file specified by:
//   - DISTFORGE_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There is no file discovery. A packaging run must behave the same on
// a developer machine and in CI, so the config file is an explicit
// input; when neither the variable nor the flag is set, built-in
// defaults apply and every knob is still reachable through flags.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the distforge tool configuration.
type Config struct {
	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Manifest is the packaging manifest location.
	// Default: distforge.jsonc
	Manifest string `yaml:"manifest"`

	// BuildRoot is where per-format scratch build trees are created.
	// Default: build
	BuildRoot string `yaml:"build_root"`

	// Dist is the publish directory holding the shipped artifacts.
	// Default: dist
	Dist string `yaml:"dist"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum slog level (debug, info, warn, error).
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration, used as the base before
// loading the config file and as-is when no file is given.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Manifest:  "distforge.jsonc",
			BuildRoot: "build",
			Dist:      "dist",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the DISTFORGE_CONFIG environment
// variable when set, and returns the defaults otherwise.
func Load() (*Config, error) {
	configPath := os.Getenv("DISTFORGE_CONFIG")
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. File values
// override the defaults field by field; fields absent from the file
// keep their defaults.
func LoadFile(path string) (*Config, error) {
	configuration := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(configuration); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return configuration, nil
}
