// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package pkgcmp

import (
	"fmt"

	"github.com/klauspost/compress/zip"
)

// EqualZip reports whether two zip archives are content-equivalent:
// same ordered member names and same decompressed member bytes.
// Compression method and level, modification times, and external
// attributes are ignored; repacking the same tree at a different
// compression level compares as equivalent.
func EqualZip(pathA, pathB string) (bool, error) {
	manifestA, err := zipManifest(pathA)
	if err != nil {
		return false, err
	}
	manifestB, err := zipManifest(pathB)
	if err != nil {
		return false, err
	}
	return membersEqual(manifestA, manifestB), nil
}

// zipManifest reads the ordered member list of a zip archive with a
// content digest per member. Directory entries participate with an
// empty-content digest so a missing directory entry is a difference.
func zipManifest(path string) ([]member, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening zip %s: %w", path, err)
	}
	defer reader.Close()

	var members []member
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("opening zip member %s in %s: %w", file.Name, path, err)
		}
		digest, err := digestReader(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading zip member %s in %s: %w", file.Name, path, err)
		}
		members = append(members, member{Name: file.Name, Digest: digest})
	}
	return members, nil
}
