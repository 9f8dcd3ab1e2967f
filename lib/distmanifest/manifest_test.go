// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package distmanifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/distforge/distforge/lib/versionfile"
)

const sampleManifest = `{
	// Packaging manifest for ta-lib.
	"project": "ta-lib",
	"formats": {
		"tarball": {
			"template": "ta-lib-${VERSION}-src.tar.gz",
			"pattern": "ta-lib-*-src.tar.gz",
		},
		"deb": {
			"template": "ta-lib_${VERSION}_amd64.deb",
			"pattern": "ta-lib_*_amd64.deb",
			"stale": "ta-lib_*.deb",
		},
	},
	"version": {
		"sources": [
			{"path": "VERSION", "kind": "plain"},
			{"path": "src/ta_common/ta_version.c", "kind": "c-define", "prefix": "TA_"},
			{"path": "CMakeLists.txt", "kind": "cmake", "prefix": "TA_"},
		],
		"digest": {
			"globs": ["src/**/*.c", "include/*.h"],
			"header": "include/ta_digest.h",
			"macro": "TA_SOURCES_DIGEST",
		},
	},
}`

func TestParseJSONC(t *testing.T) {
	manifest, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if manifest.Project != "ta-lib" {
		t.Errorf("Project = %q", manifest.Project)
	}
	if len(manifest.Formats) != 2 {
		t.Fatalf("Formats = %v", manifest.Formats)
	}

	tarball := manifest.Formats["tarball"]
	if name := tarball.ArtifactName("0.6.4"); name != "ta-lib-0.6.4-src.tar.gz" {
		t.Errorf("ArtifactName = %q", name)
	}
	if tarball.StalePattern() != "ta-lib-*-src.tar.gz" {
		t.Errorf("StalePattern must default to the build pattern, got %q", tarball.StalePattern())
	}
	if manifest.Formats["deb"].StalePattern() != "ta-lib_*.deb" {
		t.Errorf("explicit stale pattern lost")
	}
	if issues := Validate(manifest); len(issues) != 0 {
		t.Errorf("sample manifest should validate, got %v", issues)
	}
}

func TestReadFileResolvesRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "distforge.jsonc")
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	manifest, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if manifest.Root() != dir {
		t.Errorf("Root() = %q, want %q", manifest.Root(), dir)
	}

	sources, err := manifest.VersionSources()
	if err != nil {
		t.Fatalf("VersionSources failed: %v", err)
	}
	if len(sources) != 3 {
		t.Fatalf("sources = %v", sources)
	}
	if sources[0].Path != filepath.Join(dir, "VERSION") {
		t.Errorf("plain source path = %q", sources[0].Path)
	}
	if sources[1].Kind != versionfile.SourceCDefine || sources[1].Prefix != "TA_" {
		t.Errorf("c-define source = %+v", sources[1])
	}

	digest := manifest.Digest()
	if digest == nil {
		t.Fatal("Digest() = nil")
	}
	if digest.Root != dir || digest.Macro != "TA_SOURCES_DIGEST" {
		t.Errorf("digest spec = %+v", digest)
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	manifest, err := Parse([]byte(`{
		"formats": {
			"cab": {"template": "x-${VERSION}.cab", "pattern": "*.cab"},
			"zip": {"template": "x.zip", "pattern": ""},
		},
		"version": {
			"sources": [
				{"path": "/etc/VERSION", "kind": "plain"},
				{"path": "VERSION", "kind": "yaml"},
			],
			"digest": {"globs": [], "header": "", "macro": ""},
		},
	}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	issues := Validate(manifest)
	wantFragments := []string{
		"project name is required",
		"unknown format name",
		"does not contain ${VERSION}",
		"pattern is required",
		"must be relative",
		"unknown version source kind",
		"globs is empty",
		"header is required",
		"macro is required",
	}
	for _, fragment := range wantFragments {
		found := false
		for _, issue := range issues {
			if strings.Contains(issue, fragment) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no issue mentions %q in %v", fragment, issues)
		}
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte(`{"project": }`)); err == nil {
		t.Error("malformed JSON must fail")
	}
}
