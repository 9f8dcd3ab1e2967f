// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package pkgcmp

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// digestReader consumes r and returns the hex BLAKE3 digest of its
// content. Used by all comparators so member bytes are streamed, not
// accumulated.
func digestReader(r io.Reader) (string, error) {
	hasher := blake3.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", fmt.Errorf("hashing content: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// member is one named unit of an archive: a zip member, tar entry,
// cpio entry, or compound-file stream. Link is the symlink target for
// tar entries that have one, empty otherwise.
type member struct {
	Name   string
	Link   string
	Digest string
}

// membersEqual reports whether two member lists are identical in
// order, names, link targets, and content digests.
func membersEqual(a, b []member) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
