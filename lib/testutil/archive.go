// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// File is one archive member in a builder call.
type File struct {
	// Name is the member path inside the archive.
	Name string

	// Data is the member content. Ignored for symlinks.
	Data string

	// Link makes the member a symlink to this target (tar only).
	Link string
}

// ZipOptions vary the build metadata of a zip fixture without
// changing its content.
type ZipOptions struct {
	// ModTime is stamped on every member.
	ModTime time.Time

	// Store disables deflate so the same content is packed with a
	// different compression method.
	Store bool
}

// WriteZip writes a zip archive at path with the given members.
func WriteZip(t testing.TB, path string, options ZipOptions, files ...File) {
	t.Helper()

	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	for _, file := range files {
		header := &zip.FileHeader{
			Name:     file.Name,
			Method:   zip.Deflate,
			Modified: options.ModTime,
		}
		if options.Store {
			header.Method = zip.Store
		}
		member, err := writer.CreateHeader(header)
		if err != nil {
			t.Fatalf("creating zip member %s: %v", file.Name, err)
		}
		if _, err := member.Write([]byte(file.Data)); err != nil {
			t.Fatalf("writing zip member %s: %v", file.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing zip %s: %v", path, err)
	}
}

// TarballOptions vary the build metadata of a tar fixture without
// changing its content.
type TarballOptions struct {
	// Codec selects the outer compression: "gzip", "zstd", "lz4",
	// or "" for a plain tar.
	Codec string

	// ModTime, UID, and GID are stamped on every member.
	ModTime time.Time
	UID     int
	GID     int
}

// WriteTarball writes a (possibly compressed) tar archive at path.
func WriteTarball(t testing.TB, path string, options TarballOptions, files ...File) {
	t.Helper()

	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer out.Close()

	compressed, closeCodec := compressWriter(t, out, options.Codec)
	writeTarMembers(t, compressed, options, files)
	closeCodec()
}

// TarballBytes is WriteTarball into memory, for builders that embed
// tars inside other containers (deb).
func TarballBytes(t testing.TB, codec string, options TarballOptions, files ...File) []byte {
	t.Helper()

	var buffer bytes.Buffer
	options.Codec = codec
	compressed, closeCodec := compressWriter(t, &buffer, codec)
	writeTarMembers(t, compressed, options, files)
	closeCodec()
	return buffer.Bytes()
}

func writeTarMembers(t testing.TB, w io.Writer, options TarballOptions, files []File) {
	t.Helper()

	writer := tar.NewWriter(w)
	for _, file := range files {
		header := &tar.Header{
			Name:    file.Name,
			Mode:    0o644,
			Size:    int64(len(file.Data)),
			ModTime: options.ModTime,
			Uid:     options.UID,
			Gid:     options.GID,
		}
		if file.Link != "" {
			header.Typeflag = tar.TypeSymlink
			header.Linkname = file.Link
			header.Size = 0
		} else if file.Data == "" && file.Name[len(file.Name)-1] == '/' {
			header.Typeflag = tar.TypeDir
			header.Mode = 0o755
		} else {
			header.Typeflag = tar.TypeReg
		}
		if err := writer.WriteHeader(header); err != nil {
			t.Fatalf("writing tar header %s: %v", file.Name, err)
		}
		if header.Typeflag == tar.TypeReg {
			if _, err := writer.Write([]byte(file.Data)); err != nil {
				t.Fatalf("writing tar member %s: %v", file.Name, err)
			}
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
}

// compressWriter wraps w with the requested codec. The returned close
// function flushes the codec (not w itself).
func compressWriter(t testing.TB, w io.Writer, codec string) (io.Writer, func()) {
	t.Helper()

	switch codec {
	case "", "none":
		return w, func() {}
	case "gzip":
		gz := gzip.NewWriter(w)
		return gz, func() {
			if err := gz.Close(); err != nil {
				t.Fatalf("closing gzip writer: %v", err)
			}
		}
	case "zstd":
		zw, err := zstd.NewWriter(w)
		if err != nil {
			t.Fatalf("creating zstd writer: %v", err)
		}
		return zw, func() {
			if err := zw.Close(); err != nil {
				t.Fatalf("closing zstd writer: %v", err)
			}
		}
	case "lz4":
		lw := lz4.NewWriter(w)
		return lw, func() {
			if err := lw.Close(); err != nil {
				t.Fatalf("closing lz4 writer: %v", err)
			}
		}
	default:
		t.Fatalf("unknown codec %q", codec)
		return nil, nil
	}
}
