// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Distforge
// packages: builders that write small but structurally real release
// artifacts (zip, tarball, deb, rpm, msi) to disk. Tests use them to
// produce pairs of artifacts that differ only in build metadata
// (timestamps, compression, uid/gid, package GUIDs) or only in
// content, exercising the equivalence checks from both sides.
package testutil
