// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package pkgcmp

import (
	"bytes"
	"sort"
)

// summaryInformationStream is the property-set stream where MSI
// build metadata lives: creation/save timestamps, the per-build
// package code GUID, and the authoring tool name. None of it changes
// what an installation does, so it is excluded from comparison.
const summaryInformationStream = "\x05SummaryInformation"

// EqualMsi reports whether two Windows Installer packages are
// content-equivalent: identical stream names and stream bytes across
// the compound file, excluding the SummaryInformation stream.
//
// Streams are compared by name, sorted, rather than in directory
// order: the directory is a red-black tree whose node layout can vary
// between writes of identical content.
func EqualMsi(pathA, pathB string) (bool, error) {
	manifestA, err := msiManifest(pathA)
	if err != nil {
		return false, err
	}
	manifestB, err := msiManifest(pathB)
	if err != nil {
		return false, err
	}
	return membersEqual(manifestA, manifestB), nil
}

// msiManifest returns the sorted (name, digest) list of an MSI's
// streams, excluding SummaryInformation.
func msiManifest(path string) ([]member, error) {
	file, err := openCompoundFile(path)
	if err != nil {
		return nil, err
	}

	var members []member
	for _, entry := range file.entries {
		if entry.objectType != cfbObjectStream {
			continue
		}
		if entry.name == summaryInformationStream {
			continue
		}
		data, err := file.readStream(entry)
		if err != nil {
			return nil, err
		}
		digest, err := digestReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		members = append(members, member{Name: entry.name, Digest: digest})
	}

	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}
