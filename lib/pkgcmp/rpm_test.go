// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package pkgcmp

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/distforge/distforge/lib/testutil"
)

func rpmFixtureSpec() testutil.RpmSpec {
	return testutil.RpmSpec{
		Name:      "ta-lib",
		Version:   "0.6.4",
		Release:   "1",
		Arch:      "x86_64",
		Requires:  [][2]string{{"libc.so.6", ""}, {"rtld(GNU_HASH)", ""}},
		BuildTime: 1767000000,
		Files: []testutil.File{
			{Name: "./usr/lib64/libta-lib.so.0.6.4", Data: "shared object bytes"},
			{Name: "./usr/include/ta-lib/ta_common.h", Data: "#define TA_COMMON_H\n"},
		},
	}
}

func TestEqualRpmIgnoresBuildTimeAndCompressor(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.rpm")
	pathB := filepath.Join(dir, "b.rpm")

	testutil.WriteRpm(t, pathA, rpmFixtureSpec())

	spec := rpmFixtureSpec()
	spec.BuildTime = 1767099999
	spec.Compressor = "zstd"
	testutil.WriteRpm(t, pathB, spec)

	equal, err := EqualRpm(pathA, pathB)
	if err != nil {
		t.Fatalf("EqualRpm failed: %v", err)
	}
	if !equal {
		t.Error("packages differing only in build time and payload compressor should be equivalent")
	}
}

func TestEqualRpmDetectsPayloadChange(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.rpm")
	pathB := filepath.Join(dir, "b.rpm")

	testutil.WriteRpm(t, pathA, rpmFixtureSpec())

	spec := rpmFixtureSpec()
	spec.Files[1].Data = "#define TA_COMMON_H 2\n"
	testutil.WriteRpm(t, pathB, spec)

	equal, err := EqualRpm(pathA, pathB)
	if err != nil {
		t.Fatalf("EqualRpm failed: %v", err)
	}
	if equal {
		t.Error("packages with different payload content should not be equivalent")
	}
}

func TestEqualRpmDetectsRequireChange(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.rpm")
	pathB := filepath.Join(dir, "b.rpm")

	testutil.WriteRpm(t, pathA, rpmFixtureSpec())

	spec := rpmFixtureSpec()
	spec.Requires = append(spec.Requires, [2]string{"libm.so.6", ""})
	testutil.WriteRpm(t, pathB, spec)

	equal, err := EqualRpm(pathA, pathB)
	if err != nil {
		t.Fatalf("EqualRpm failed: %v", err)
	}
	if equal {
		t.Error("packages with different require lists should not be equivalent")
	}
}

func TestRpmHeaderRejectsOversizedIndexCount(t *testing.T) {
	intro := make([]byte, 16)
	copy(intro, rpmHeaderMagic)
	binary.BigEndian.PutUint32(intro[8:12], 0xf0000000)
	binary.BigEndian.PutUint32(intro[12:16], 8)

	if _, _, err := rpmReadHeader(bytes.NewReader(intro)); err == nil {
		t.Fatal("a header with an absurd index count should be rejected")
	}
}

func TestRpmHeaderRejectsOversizedStore(t *testing.T) {
	intro := make([]byte, 16)
	copy(intro, rpmHeaderMagic)
	binary.BigEndian.PutUint32(intro[8:12], 1)
	binary.BigEndian.PutUint32(intro[12:16], 0xffffffff)

	if _, _, err := rpmReadHeader(bytes.NewReader(intro)); err == nil {
		t.Fatal("a header with an absurd store size should be rejected")
	}
}

func TestEqualRpmDetectsArchChange(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.rpm")
	pathB := filepath.Join(dir, "b.rpm")

	testutil.WriteRpm(t, pathA, rpmFixtureSpec())

	spec := rpmFixtureSpec()
	spec.Arch = "aarch64"
	testutil.WriteRpm(t, pathB, spec)

	equal, err := EqualRpm(pathA, pathB)
	if err != nil {
		t.Fatalf("EqualRpm failed: %v", err)
	}
	if equal {
		t.Error("packages with different architectures should not be equivalent")
	}
}
