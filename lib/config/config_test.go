// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultWhenUnset(t *testing.T) {
	t.Setenv("DISTFORGE_CONFIG", "")

	configuration, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if configuration.Paths.Dist != "dist" {
		t.Errorf("Paths.Dist = %q", configuration.Paths.Dist)
	}
	if configuration.Log.Level != "info" {
		t.Errorf("Log.Level = %q", configuration.Log.Level)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "distforge.yaml")
	content := `paths:
  dist: /srv/releases
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	configuration, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if configuration.Paths.Dist != "/srv/releases" {
		t.Errorf("Paths.Dist = %q", configuration.Paths.Dist)
	}
	if configuration.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", configuration.Log.Level)
	}
	// Fields absent from the file keep their defaults.
	if configuration.Paths.Manifest != "distforge.jsonc" {
		t.Errorf("Paths.Manifest = %q", configuration.Paths.Manifest)
	}
}

func TestLoadFileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "distforge.yaml")
	if err := os.WriteFile(path, []byte("pathz:\n  dist: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("unknown top-level key must fail")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "distforge.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DISTFORGE_CONFIG", path)

	configuration, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if configuration.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", configuration.Log.Level)
	}
}
