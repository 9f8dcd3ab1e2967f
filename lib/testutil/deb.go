// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"io"
	"os"
	"sort"
	"testing"
	"time"
)

// DebSpec describes a synthetic Debian package fixture.
type DebSpec struct {
	// Control holds control-file fields (Package, Version, ...).
	Control map[string]string

	// Files is the data.tar payload.
	Files []File

	// Compressor selects the control/data tar compression: "gzip"
	// (default) or "zstd".
	Compressor string

	// ModTime is stamped on all tar members and ar headers.
	ModTime time.Time
}

// WriteDeb writes a .deb (ar container with debian-binary,
// control.tar.*, data.tar.*) at path.
func WriteDeb(t testing.TB, path string, spec DebSpec) {
	t.Helper()

	compressor := spec.Compressor
	if compressor == "" {
		compressor = "gzip"
	}
	extension := map[string]string{"gzip": ".gz", "zstd": ".zst"}[compressor]
	if extension == "" {
		t.Fatalf("unsupported deb compressor %q", compressor)
	}

	tarOptions := TarballOptions{ModTime: spec.ModTime}
	controlTar := TarballBytes(t, compressor, tarOptions,
		File{Name: "./control", Data: controlFileContent(spec.Control)})
	dataTar := TarballBytes(t, compressor, tarOptions, spec.Files...)

	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer out.Close()

	if _, err := io.WriteString(out, "!<arch>\n"); err != nil {
		t.Fatalf("writing ar magic: %v", err)
	}
	writeArMember(t, out, "debian-binary", []byte("2.0\n"), spec.ModTime)
	writeArMember(t, out, "control.tar"+extension, controlTar, spec.ModTime)
	writeArMember(t, out, "data.tar"+extension, dataTar, spec.ModTime)
}

// controlFileContent renders control fields in the order dpkg uses
// for the fields the comparator reads, then the rest sorted.
func controlFileContent(fields map[string]string) string {
	leading := []string{"Package", "Version", "Architecture", "Depends"}
	written := make(map[string]bool)
	content := ""
	for _, key := range leading {
		if value, ok := fields[key]; ok {
			content += fmt.Sprintf("%s: %s\n", key, value)
			written[key] = true
		}
	}
	var rest []string
	for key := range fields {
		if !written[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		content += fmt.Sprintf("%s: %s\n", key, fields[key])
	}
	return content
}

// writeArMember writes one fixed-width ar(5) member header plus data,
// padding to an even offset.
func writeArMember(t testing.TB, w io.Writer, name string, data []byte, modTime time.Time) {
	t.Helper()

	header := fmt.Sprintf("%-16s%-12d%-6d%-6d%-8s%-10d`\n",
		name, modTime.Unix(), 0, 0, "100644", len(data))
	if _, err := io.WriteString(w, header); err != nil {
		t.Fatalf("writing ar header %s: %v", name, err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("writing ar member %s: %v", name, err)
	}
	if len(data)%2 == 1 {
		if _, err := io.WriteString(w, "\n"); err != nil {
			t.Fatalf("writing ar padding: %v", err)
		}
	}
}
