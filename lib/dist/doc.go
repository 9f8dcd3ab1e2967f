// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package dist implements the idempotent publish decision at the
// center of a packaging run: a freshly built candidate artifact
// replaces the published copy in the dist directory only when its
// content actually differs.
//
// The protocol is build → compare → publish. The build step (owned by
// lib/release) leaves one artifact in a scratch directory; Publish
// locates it, verifies the build contract (exactly one file matching
// the format's pattern, version string embedded in the name), purges
// stale versions from the dist directory, and then either discards
// the candidate (content-equivalent to what is already published) or
// promotes it. Promotion goes through a temp file inside the dist
// directory and finishes with a rename, so the dist directory never
// holds a half-written artifact: a crash leaves the old file or the
// new file, never neither.
//
// Equivalence is format-aware (lib/pkgcmp) and ignores build
// metadata, which is what makes repeated runs idempotent: rebuilding
// the same sources produces byte-different archives (timestamps,
// compression) that compare as unchanged.
package dist
