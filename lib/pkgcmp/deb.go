// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package pkgcmp

import (
	"archive/tar"
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// debControlFields are the control-file fields that affect what an
// installation does. Everything else (Installed-Size, Maintainer,
// Description, Priority) is ignored: it never changes the installed
// bytes or the dependency resolution.
var debControlFields = []string{"Package", "Version", "Architecture", "Depends"}

// debSummary is the comparison-relevant content of a Debian package.
type debSummary struct {
	control map[string]string
	payload []member
}

// EqualDeb reports whether two Debian packages are content-equivalent:
// identical installation-relevant control fields and identical
// data.tar payload (ordered member names, link targets, content).
// Build timestamps, ar member metadata, and control.tar member
// ordering are ignored.
func EqualDeb(pathA, pathB string) (bool, error) {
	summaryA, err := debPackageSummary(pathA)
	if err != nil {
		return false, err
	}
	summaryB, err := debPackageSummary(pathB)
	if err != nil {
		return false, err
	}

	for _, field := range debControlFields {
		if summaryA.control[field] != summaryB.control[field] {
			return false, nil
		}
	}
	return membersEqual(summaryA.payload, summaryB.payload), nil
}

// debPackageSummary parses a .deb file into its comparison summary.
func debPackageSummary(path string) (*debSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening deb %s: %w", path, err)
	}
	defer file.Close()

	archive, err := newArReader(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	summary := &debSummary{}
	for {
		entry, err := archive.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		switch {
		case strings.HasPrefix(entry.Name, "control.tar"):
			control, err := debControl(entry.Data)
			if err != nil {
				return nil, fmt.Errorf("%s: control member: %w", path, err)
			}
			summary.control = control
		case strings.HasPrefix(entry.Name, "data.tar"):
			payload, err := debTarMembers(entry.Data)
			if err != nil {
				return nil, fmt.Errorf("%s: data member: %w", path, err)
			}
			summary.payload = payload
		}
	}

	if summary.control == nil {
		return nil, fmt.Errorf("%s: no control.tar member", path)
	}
	if summary.payload == nil {
		return nil, fmt.Errorf("%s: no data.tar member", path)
	}
	return summary, nil
}

// debTarMembers decompresses a control/data tar member and returns its
// ordered member list. dpkg emits gzip, zstd, or uncompressed tars;
// anything else (xz, bzip2) is an error; this package has no decoder
// for those and will not guess.
func debTarMembers(r io.Reader) ([]member, error) {
	decompressed, closeCodec, err := debDecompress(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	defer closeCodec()
	return tarManifest(decompressed)
}

// debDecompress is decompressStream restricted to the codecs dpkg
// emits that this package can decode.
func debDecompress(r *bufio.Reader) (io.Reader, func(), error) {
	magic, err := r.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("reading member magic: %w", err)
	}

	// xz and bzip2 are recognized only to produce a specific error.
	if len(magic) >= 4 && magic[0] == 0xfd && magic[1] == '7' && magic[2] == 'z' {
		return nil, nil, fmt.Errorf("xz-compressed member is not supported")
	}
	if len(magic) >= 3 && magic[0] == 'B' && magic[1] == 'Z' && magic[2] == 'h' {
		return nil, nil, fmt.Errorf("bzip2-compressed member is not supported")
	}
	return decompressStream(r)
}

// debControl extracts the control file from a control.tar member and
// parses its fields. Continuation lines (leading space or tab) are
// folded into the preceding field.
func debControl(r io.Reader) (map[string]string, error) {
	decompressed, closeCodec, err := debDecompress(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}
	defer closeCodec()

	reader := tar.NewReader(decompressed)
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("no control file in control.tar")
		}
		if err != nil {
			return nil, err
		}
		name := strings.TrimPrefix(header.Name, "./")
		if name != "control" {
			continue
		}
		return parseControlFile(reader)
	}
}

// parseControlFile parses the RFC 822 style key/value syntax of a
// Debian control file.
func parseControlFile(r io.Reader) (map[string]string, error) {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(r)
	var lastKey string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break // end of the first paragraph; binary control files have one
		}
		if line[0] == ' ' || line[0] == '\t' {
			if lastKey != "" {
				fields[lastKey] += "\n" + strings.TrimSpace(line)
			}
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("malformed control line %q", line)
		}
		lastKey = key
		fields[key] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading control file: %w", err)
	}
	return fields, nil
}
