// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package pkgcmp

import (
	"archive/tar"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Outer-stream magic bytes for codec detection.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// EqualTarball reports whether two tar archives are content-equivalent
// after decompression: same ordered member names, link targets, and
// member bytes. The compression codec, compression level, and tar
// metadata (mtime, uid/gid, uname/gname, mode) are ignored, so a
// repack of identical trees compares as equivalent even across
// codecs.
func EqualTarball(pathA, pathB string) (bool, error) {
	manifestA, err := tarballManifest(pathA)
	if err != nil {
		return false, err
	}
	manifestB, err := tarballManifest(pathB)
	if err != nil {
		return false, err
	}
	return membersEqual(manifestA, manifestB), nil
}

// tarballManifest opens a (possibly compressed) tar file and returns
// its ordered member list.
func tarballManifest(path string) ([]member, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tarball %s: %w", path, err)
	}
	defer file.Close()

	decompressed, closeCodec, err := decompressStream(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	defer closeCodec()

	members, err := tarManifest(decompressed)
	if err != nil {
		return nil, fmt.Errorf("reading tar members of %s: %w", path, err)
	}
	return members, nil
}

// decompressStream detects the compression codec from the stream's
// magic bytes and returns a decompressed reader plus a close function
// for the codec's resources. A stream with no recognized magic is
// passed through unchanged (plain tar).
func decompressStream(r *bufio.Reader) (io.Reader, func(), error) {
	magic, err := r.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("reading stream magic: %w", err)
	}

	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return gz, func() { gz.Close() }, nil
	case bytes.HasPrefix(magic, zstdMagic):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return zr.IOReadCloser(), zr.Close, nil
	case bytes.HasPrefix(magic, lz4Magic):
		return lz4.NewReader(r), func() {}, nil
	default:
		return r, func() {}, nil
	}
}

// tarManifest walks a tar stream and returns its ordered member list.
// Content digests cover regular file bytes; symlink targets are
// carried in Link. Header-only entries (directories, devices) carry
// an empty digest.
func tarManifest(r io.Reader) ([]member, error) {
	reader := tar.NewReader(r)

	var members []member
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		entry := member{Name: header.Name, Link: header.Linkname}
		if header.Typeflag == tar.TypeReg {
			digest, err := digestReader(reader)
			if err != nil {
				return nil, fmt.Errorf("member %s: %w", header.Name, err)
			}
			entry.Digest = digest
		}
		members = append(members, entry)
	}
	return members, nil
}
