// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/distforge/distforge/lib/distmanifest"
	"github.com/distforge/distforge/lib/pkgcmp"
)

func TestProjectStepsCanonicalOrder(t *testing.T) {
	manifest := &distmanifest.Manifest{
		Project: "app",
		Formats: map[string]distmanifest.Artifact{
			"msi":     {Template: "app-${VERSION}.msi", Pattern: "app-*.msi"},
			"tarball": {Template: "app-${VERSION}.tar.gz", Pattern: "app-*.tar.gz"},
			"deb":     {Template: "app_${VERSION}.deb", Pattern: "app_*.deb"},
		},
	}

	steps, err := ProjectSteps(manifest, BuildEnvironment{SourceDir: t.TempDir(), Version: "1.0.0"})
	if err != nil {
		t.Fatalf("ProjectSteps failed: %v", err)
	}

	var order []pkgcmp.Format
	for _, step := range steps {
		order = append(order, step.Format)
		if step.Build == nil {
			t.Errorf("%s step has no build", step.Format)
		}
	}
	want := []pkgcmp.Format{pkgcmp.FormatTarball, pkgcmp.FormatDeb, pkgcmp.FormatMsi}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	// The tarball is verified by rebuilding it from source; install
	// verification needs sudo, so without it those hooks are off.
	for _, step := range steps {
		if step.Format == pkgcmp.FormatTarball {
			if step.Verify == nil {
				t.Error("tarball step must verify the source bundle")
			}
			continue
		}
		if step.Verify != nil {
			t.Errorf("%s step has a verify hook without sudo", step.Format)
		}
	}
}

func TestProjectStepsToolsAndOptional(t *testing.T) {
	manifest := &distmanifest.Manifest{
		Project: "app",
		Formats: map[string]distmanifest.Artifact{
			"tarball": {Template: "app-${VERSION}.tar.gz", Pattern: "app-*.tar.gz"},
			"rpm":     {Template: "app-${VERSION}.rpm", Pattern: "app-*.rpm"},
			"msi":     {Template: "app-${VERSION}.msi", Pattern: "app-*.msi"},
		},
	}

	steps, err := ProjectSteps(manifest, BuildEnvironment{SourceDir: t.TempDir(), Version: "1.0.0"})
	if err != nil {
		t.Fatalf("ProjectSteps failed: %v", err)
	}

	for _, step := range steps {
		if len(step.Tools) == 0 {
			t.Errorf("%s step declares no tools", step.Format)
		}
		// Only the installer is dispensable: a host without WiX still
		// releases everything else.
		if step.Optional != (step.Format == pkgcmp.FormatMsi) {
			t.Errorf("%s step optional = %v", step.Format, step.Optional)
		}
	}
}

func TestConfigureDefines(t *testing.T) {
	defaults := configureDefines(BuildEnvironment{})
	if defaults["CMAKE_BUILD_TYPE"] != "Release" {
		t.Errorf("CMAKE_BUILD_TYPE = %q, want Release", defaults["CMAKE_BUILD_TYPE"])
	}
	if defaults["BUILD_DEV_TOOLS"] != "OFF" {
		t.Errorf("BUILD_DEV_TOOLS = %q, want OFF", defaults["BUILD_DEV_TOOLS"])
	}

	env := BuildEnvironment{Defines: map[string]string{
		"BUILD_DEV_TOOLS": "ON",
		"TA_LIB_SIMD":     "AVX2",
	}}
	merged := configureDefines(env)
	if merged["BUILD_DEV_TOOLS"] != "ON" {
		t.Error("manifest defines must override the defaults")
	}
	if merged["TA_LIB_SIMD"] != "AVX2" {
		t.Error("manifest defines must be carried through")
	}
	if merged["CMAKE_BUILD_TYPE"] != "Release" {
		t.Error("defaults must survive the overlay")
	}
}

func TestProjectStepsRejectsUnknownFormat(t *testing.T) {
	manifest := &distmanifest.Manifest{
		Project: "app",
		Formats: map[string]distmanifest.Artifact{
			"cab": {Template: "app-${VERSION}.cab", Pattern: "app-*.cab"},
		},
	}
	if _, err := ProjectSteps(manifest, BuildEnvironment{}); err == nil {
		t.Error("unknown format name must fail")
	}
}

func TestWriteZipPayload(t *testing.T) {
	buildDir := t.TempDir()
	sourceDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(sourceDir, "include"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeTestFile(t, filepath.Join(buildDir, "app.dll"), "binary")
	writeTestFile(t, filepath.Join(buildDir, "app.lib"), "import lib")
	writeTestFile(t, filepath.Join(sourceDir, "include", "app.h"), "header")

	layout := &distmanifest.ZipLayout{
		Binaries: []string{"app.dll", "app.lib"},
		Headers:  []string{"include/*.h"},
	}
	path := filepath.Join(t.TempDir(), "app-1.0.0.zip")
	if err := writeZipPayload(path, buildDir, sourceDir, "1.0.0", layout); err != nil {
		t.Fatalf("writeZipPayload failed: %v", err)
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	var names []string
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	want := []string{"VERSION.txt", "lib/app.dll", "lib/app.lib", "include/app.h"}
	if len(names) != len(want) {
		t.Fatalf("members = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("members = %v, want %v", names, want)
		}
	}

	stamp, err := reader.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer stamp.Close()
	data, err := io.ReadAll(stamp)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "1.0.0\n" {
		t.Errorf("VERSION.txt = %q, want the project version", data)
	}
}

func TestWriteZipPayloadDeterministic(t *testing.T) {
	buildDir := t.TempDir()
	writeTestFile(t, filepath.Join(buildDir, "app.dll"), "binary")
	layout := &distmanifest.ZipLayout{Binaries: []string{"app.dll"}}

	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.zip")
	pathB := filepath.Join(dir, "b.zip")
	if err := writeZipPayload(pathA, buildDir, buildDir, "1.0.0", layout); err != nil {
		t.Fatal(err)
	}
	if err := writeZipPayload(pathB, buildDir, buildDir, "1.0.0", layout); err != nil {
		t.Fatal(err)
	}

	dataA, err := os.ReadFile(pathA)
	if err != nil {
		t.Fatal(err)
	}
	dataB, err := os.ReadFile(pathB)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dataA, dataB) {
		t.Error("repeated payload builds must be byte-identical")
	}
}

func TestWriteZipPayloadRequiresBinaries(t *testing.T) {
	layout := &distmanifest.ZipLayout{Binaries: []string{"*.dll"}}
	err := writeZipPayload(filepath.Join(t.TempDir(), "x.zip"), t.TempDir(), t.TempDir(), "1.0.0", layout)
	if err == nil {
		t.Error("empty payload must fail")
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
