// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zip"

	"github.com/distforge/distforge/lib/distmanifest"
)

// writeZipPayload assembles the portable zip: a VERSION.txt stamp,
// built binaries under lib/, and public headers under include/.
// Members are added in sorted order with no timestamps, so rebuilding
// identical content yields an archive the comparator sees as
// unchanged.
func writeZipPayload(path, buildDir, sourceDir, version string, layout *distmanifest.ZipLayout) error {
	binaries, err := globAll(buildDir, layout.Binaries)
	if err != nil {
		return err
	}
	headers, err := globAll(sourceDir, layout.Headers)
	if err != nil {
		return err
	}
	if len(binaries) == 0 {
		return fmt.Errorf("zip payload: no binaries match %v in %s", layout.Binaries, buildDir)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	writer := zip.NewWriter(out)

	stamp, err := writer.Create("VERSION.txt")
	if err == nil {
		_, err = io.WriteString(stamp, version+"\n")
	}
	if err != nil {
		writer.Close()
		out.Close()
		return fmt.Errorf("stamping %s: %w", path, err)
	}

	addAll := func(prefix string, files []string) error {
		for _, file := range files {
			member, err := writer.Create(prefix + "/" + filepath.Base(file))
			if err != nil {
				return err
			}
			in, err := os.Open(file)
			if err != nil {
				return err
			}
			_, err = io.Copy(member, in)
			in.Close()
			if err != nil {
				return fmt.Errorf("adding %s: %w", file, err)
			}
		}
		return nil
	}

	if err := addAll("lib", binaries); err != nil {
		writer.Close()
		out.Close()
		return err
	}
	if err := addAll("include", headers); err != nil {
		writer.Close()
		out.Close()
		return err
	}

	if err := writer.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finishing %s: %w", path, err)
	}
	return out.Close()
}

// globAll resolves patterns under root and returns the matches
// sorted.
func globAll(root string, patterns []string) ([]string, error) {
	var matches []string
	for _, pattern := range patterns {
		found, err := filepath.Glob(filepath.Join(root, pattern))
		if err != nil {
			return nil, fmt.Errorf("globbing %q in %s: %w", pattern, root, err)
		}
		matches = append(matches, found...)
	}
	sort.Strings(matches)
	return matches, nil
}
