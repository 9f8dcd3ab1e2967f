// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package distmanifest provides parsing and validation for packaging
// manifests. A manifest describes how one project is packaged: the
// artifact name per format, where the build drops its output, which
// files embed the project version, and what feeds the sources digest.
//
// Manifests are authored on disk as JSONC files (JSON extended with
// comments and trailing commas), conventionally named
// distforge.jsonc at the project root. All paths in a manifest are
// relative to the directory containing it.
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Manifest
//  2. Validate: structural checks, all issues collected
//  3. ArtifactName / VersionSources / Digest: resolved accessors for
//     the orchestrator
package distmanifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/distforge/distforge/lib/versionfile"
)

// Manifest is the parsed packaging manifest.
type Manifest struct {
	// Project is the short project name used in logs and summaries.
	Project string `json:"project"`

	// Formats maps a format name (zip, tarball, deb, rpm, msi) to its
	// artifact description. Formats absent here are never built.
	Formats map[string]Artifact `json:"formats"`

	// Version declares where the project version is embedded and,
	// optionally, the sources digest.
	Version VersionBlock `json:"version"`

	// ZipLayout stages the portable zip payload; only meaningful when
	// a zip format is declared.
	ZipLayout *ZipLayout `json:"zip_layout,omitempty"`

	// Defines are extra CMake cache entries for every configure, on
	// top of the built-in release defaults.
	Defines map[string]string `json:"defines,omitempty"`

	// root is the directory the manifest was read from. Empty for
	// manifests built in memory.
	root string
}

// Artifact describes one packaged output.
type Artifact struct {
	// Template is the published file name with ${VERSION} expansion,
	// e.g. "ta-lib-${VERSION}-src.tar.gz".
	Template string `json:"template"`

	// Pattern is the glob the build step's single output must match
	// inside the build directory, e.g. "ta-lib-*-src.tar.gz".
	Pattern string `json:"pattern"`

	// Stale, when set, is a glob in the publish directory whose
	// other-version matches are purged before publishing. Defaults to
	// Pattern when empty.
	Stale string `json:"stale,omitempty"`
}

// VersionBlock declares the version embeddings.
type VersionBlock struct {
	Sources []VersionSource `json:"sources"`
	Digest  *DigestBlock    `json:"digest,omitempty"`
}

// VersionSource is one file embedding the project version.
type VersionSource struct {
	// Path is relative to the manifest directory.
	Path string `json:"path"`

	// Kind is "plain", "c-define", or "cmake".
	Kind string `json:"kind"`

	// Prefix is prepended to macro and variable names.
	Prefix string `json:"prefix,omitempty"`
}

// DigestBlock declares the sources digest.
type DigestBlock struct {
	// Globs select the hashed files, relative to the manifest
	// directory.
	Globs []string `json:"globs"`

	// Header is the generated header holding the digest macro.
	Header string `json:"header"`

	// Macro is the #define name.
	Macro string `json:"macro"`
}

// ZipLayout describes the portable zip payload tree.
type ZipLayout struct {
	// Binaries are build-directory globs staged into lib/.
	Binaries []string `json:"binaries"`

	// Headers are source-directory globs staged into include/.
	Headers []string `json:"headers"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Manifest.
func Parse(data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	var manifest Manifest
	if err := json.Unmarshal(stripped, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &manifest, nil
}

// ReadFile reads a JSONC manifest from disk. The manifest's relative
// paths are anchored at the file's directory.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	manifest, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	manifest.root = filepath.Dir(path)
	return manifest, nil
}

// Root returns the directory the manifest paths are relative to.
func (m *Manifest) Root() string {
	return m.root
}

// ArtifactName expands a format's template for the given version.
func (a Artifact) ArtifactName(version string) string {
	return strings.ReplaceAll(a.Template, "${VERSION}", version)
}

// StalePattern returns the stale-purge glob, defaulting to the build
// pattern.
func (a Artifact) StalePattern() string {
	if a.Stale != "" {
		return a.Stale
	}
	return a.Pattern
}

// VersionSources resolves the declared version sources against the
// manifest directory.
func (m *Manifest) VersionSources() ([]versionfile.Source, error) {
	sources := make([]versionfile.Source, 0, len(m.Version.Sources))
	for _, declared := range m.Version.Sources {
		kind, err := versionfile.ParseSourceKind(declared.Kind)
		if err != nil {
			return nil, err
		}
		sources = append(sources, versionfile.Source{
			Path:   filepath.Join(m.root, declared.Path),
			Kind:   kind,
			Prefix: declared.Prefix,
		})
	}
	return sources, nil
}

// Digest resolves the sources-digest declaration against the manifest
// directory. Returns nil when the manifest declares no digest.
func (m *Manifest) Digest() *versionfile.DigestSpec {
	if m.Version.Digest == nil {
		return nil
	}
	return &versionfile.DigestSpec{
		Root:   m.root,
		Globs:  m.Version.Digest.Globs,
		Header: m.Version.Digest.Header,
		Macro:  m.Version.Digest.Macro,
	}
}
