// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package pkgcmp implements content-level equivalence checks between
// release artifacts of the same format. Two artifacts are equivalent
// when a rebuild would give users the same thing: identical member
// lists and identical member bytes, with build metadata (timestamps,
// compression levels, packer uid/gid, per-build package GUIDs)
// ignored.
//
// One comparator exists per artifact format:
//
//   - Zip: ordered member names plus decompressed member content.
//   - Tarball: the same, after decompressing the outer stream. The
//     codec is detected from magic bytes (gzip, zstd, LZ4, or plain
//     tar).
//   - Deb: control fields that affect installation (Package, Version,
//     Architecture, Depends) plus the data.tar payload.
//   - Rpm: header tags (name, version, release, arch, requires) plus
//     the cpio payload.
//   - Msi: compound-file streams by name and content, excluding the
//     SummaryInformation stream where build timestamps and per-build
//     GUIDs live.
//
// Member content is compared through BLAKE3 digests so archives are
// streamed rather than held in memory side by side.
//
// A comparator never guesses: corrupt or truncated input on either
// side, or a compressor this package cannot decode, is an error, not
// a "different" verdict. The caller decides what to do with a failed
// comparison (the publisher treats it as fatal).
package pkgcmp
