// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/distforge/distforge/lib/testutil"
)

func TestExtractTarGz(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "app-1.0.0.tar.gz")
	testutil.WriteTarball(t, archive,
		testutil.TarballOptions{Codec: "gzip", ModTime: buildTime},
		testutil.File{Name: "app-1.0.0/", Data: ""},
		testutil.File{Name: "app-1.0.0/configure", Data: "#!/bin/sh\n"},
		testutil.File{Name: "app-1.0.0/src/app.c", Data: "int main(void) { return 0; }\n"})

	root, err := extractTarGz(archive, t.TempDir())
	if err != nil {
		t.Fatalf("extractTarGz failed: %v", err)
	}
	if filepath.Base(root) != "app-1.0.0" {
		t.Errorf("root = %q, want the tarball's top-level directory", root)
	}
	data, err := os.ReadFile(filepath.Join(root, "src", "app.c"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "int main(void) { return 0; }\n" {
		t.Errorf("extracted content = %q", data)
	}
}

func TestExtractTarGzRejectsEscapingMembers(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil.tar.gz")
	testutil.WriteTarball(t, archive,
		testutil.TarballOptions{Codec: "gzip", ModTime: buildTime},
		testutil.File{Name: "../evil", Data: "x"})

	if _, err := extractTarGz(archive, t.TempDir()); err == nil {
		t.Fatal("a member escaping the extraction root must be rejected")
	}
}

func TestExtractTarGzRejectsMultipleRoots(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "split.tar.gz")
	testutil.WriteTarball(t, archive,
		testutil.TarballOptions{Codec: "gzip", ModTime: buildTime},
		testutil.File{Name: "a/x", Data: "1"},
		testutil.File{Name: "b/y", Data: "2"})

	if _, err := extractTarGz(archive, t.TempDir()); err == nil {
		t.Fatal("a dist tarball has exactly one top-level directory")
	}
}
