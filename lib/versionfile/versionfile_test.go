// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package versionfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const versionC = `/* generated version identification */
#define TA_MAJOR "0"
#define TA_MINOR "6"
#define TA_BUILD "4"

const char *version(void) { return TA_MAJOR "." TA_MINOR "." TA_BUILD; }
`

const cmakeLists = `cmake_minimum_required(VERSION 3.16)
set(TA_VERSION_MAJOR 0)
set(TA_VERSION_MINOR 6)
set(TA_VERSION_PATCH 4)
project(ta-lib VERSION ${TA_VERSION_MAJOR}.${TA_VERSION_MINOR}.${TA_VERSION_PATCH})
`

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseVersion(t *testing.T) {
	version, err := Parse(" 0.6.4\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if version != (Version{Major: 0, Minor: 6, Patch: 4}) {
		t.Errorf("version = %+v", version)
	}
	if version.String() != "0.6.4" {
		t.Errorf("String() = %q", version.String())
	}

	for _, bad := range []string{"", "1.2", "1.2.3.4", "1.2.x", "1.-2.3"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) should fail", bad)
		}
	}
}

func TestVersionCompare(t *testing.T) {
	low := Version{Major: 0, Minor: 6, Patch: 4}
	high := Version{Major: 0, Minor: 7, Patch: 0}
	if low.Compare(high) != -1 || high.Compare(low) != 1 || low.Compare(low) != 0 {
		t.Error("Compare ordering is wrong")
	}
	if (Version{Major: 1}).Compare(Version{Minor: 99, Patch: 99}) != 1 {
		t.Error("major must dominate minor and patch")
	}
}

func TestSourceReadKinds(t *testing.T) {
	want := Version{Major: 0, Minor: 6, Patch: 4}

	cases := []struct {
		name   string
		source Source
	}{
		{"plain", Source{Path: writeSource(t, "VERSION", "0.6.4\n"), Kind: SourcePlain}},
		{"c-define", Source{Path: writeSource(t, "version.c", versionC), Kind: SourceCDefine, Prefix: "TA_"}},
		{"cmake", Source{Path: writeSource(t, "CMakeLists.txt", cmakeLists), Kind: SourceCMake, Prefix: "TA_"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			version, err := c.source.Read()
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if version != want {
				t.Errorf("version = %v, want %v", version, want)
			}
		})
	}
}

func TestSourceReadMissingKeyFatal(t *testing.T) {
	source := Source{
		Path:   writeSource(t, "version.c", "#define TA_MAJOR \"0\"\n"),
		Kind:   SourceCDefine,
		Prefix: "TA_",
	}
	if _, err := source.Read(); err == nil {
		t.Error("missing MINOR/BUILD must be fatal")
	}
}

func TestSourceWritePreservesSurroundingText(t *testing.T) {
	source := Source{
		Path:   writeSource(t, "version.c", versionC),
		Kind:   SourceCDefine,
		Prefix: "TA_",
	}
	if err := source.Write(Version{Major: 0, Minor: 7, Patch: 0}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(source.Path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{
		"#define TA_MAJOR \"0\"",
		"#define TA_MINOR \"7\"",
		"#define TA_BUILD \"0\"",
		"generated version identification",
		"const char *version(void)",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("rewritten file missing %q:\n%s", want, content)
		}
	}
}

func TestSyncHighestWins(t *testing.T) {
	plainPath := writeSource(t, "VERSION", "0.7.0\n")
	cPath := writeSource(t, "version.c", versionC)
	cmakePath := writeSource(t, "CMakeLists.txt", cmakeLists)

	sources := []Source{
		{Path: plainPath, Kind: SourcePlain},
		{Path: cPath, Kind: SourceCDefine, Prefix: "TA_"},
		{Path: cmakePath, Kind: SourceCMake, Prefix: "TA_"},
	}
	result, err := Sync(sources)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Version.String() != "0.7.0" {
		t.Errorf("synced version = %v, want 0.7.0", result.Version)
	}
	if len(result.Updated) != 2 {
		t.Errorf("Updated = %v, want the two lagging sources", result.Updated)
	}

	for _, source := range sources {
		version, err := source.Read()
		if err != nil {
			t.Fatal(err)
		}
		if version.String() != "0.7.0" {
			t.Errorf("%s holds %v after sync", source.Path, version)
		}
	}

	// A second sync is a no-op.
	result, err = Sync(sources)
	if err != nil {
		t.Fatalf("second Sync failed: %v", err)
	}
	if len(result.Updated) != 0 {
		t.Errorf("second sync rewrote %v", result.Updated)
	}
}

func TestDigestUpdate(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "a.c"), []byte("int a;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	header := "#define TA_SOURCES_DIGEST 0000000000000000000000000000000000000000000000000000000000000000\n"
	if err := os.WriteFile(filepath.Join(root, "digest.h"), []byte(header), 0o644); err != nil {
		t.Fatal(err)
	}

	spec := DigestSpec{
		Root:   root,
		Globs:  []string{"src/*.c"},
		Header: "digest.h",
		Macro:  "TA_SOURCES_DIGEST",
	}

	changed, digest, err := spec.Update()
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !changed {
		t.Error("first update must rewrite the placeholder")
	}

	// Unchanged sources leave the header alone.
	changed, again, err := spec.Update()
	if err != nil {
		t.Fatalf("second Update failed: %v", err)
	}
	if changed || again != digest {
		t.Error("digest must be stable over unchanged sources")
	}

	// CRLF line endings do not change the digest.
	if err := os.WriteFile(filepath.Join(root, "src", "a.c"), []byte("int a;\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	crlf, err := spec.Compute()
	if err != nil {
		t.Fatal(err)
	}
	if crlf != digest {
		t.Error("line-ending normalization failed")
	}

	// Content changes do.
	if err := os.WriteFile(filepath.Join(root, "src", "a.c"), []byte("int b;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	changed, updated, err := spec.Update()
	if err != nil {
		t.Fatal(err)
	}
	if !changed || updated == digest {
		t.Error("changed sources must produce a new digest")
	}
}
