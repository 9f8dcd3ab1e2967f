// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package versionfile

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/zeebo/blake3"
)

// DigestSpec describes the sources digest: which files feed it and
// where the resulting macro lives.
type DigestSpec struct {
	// Root anchors the glob patterns and the relative names that are
	// hashed.
	Root string

	// Globs select the files, relative to Root.
	Globs []string

	// Header is the generated header file holding the digest macro,
	// relative to Root.
	Header string

	// Macro is the #define name.
	Macro string
}

// Compute hashes the selected files and returns the hex digest. Files
// are taken in sorted relative-path order and line endings are
// normalized, so the digest is stable across checkouts with different
// autocrlf settings.
func (d DigestSpec) Compute() (string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, glob := range d.Globs {
		matches, err := filepath.Glob(filepath.Join(d.Root, glob))
		if err != nil {
			return "", fmt.Errorf("globbing %q: %w", glob, err)
		}
		for _, match := range matches {
			relative, err := filepath.Rel(d.Root, match)
			if err != nil {
				return "", err
			}
			relative = filepath.ToSlash(relative)
			if !seen[relative] {
				seen[relative] = true
				paths = append(paths, relative)
			}
		}
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("sources digest: no files match %v under %s", d.Globs, d.Root)
	}
	sort.Strings(paths)

	hasher := blake3.New()
	for _, relative := range paths {
		data, err := os.ReadFile(filepath.Join(d.Root, relative))
		if err != nil {
			return "", fmt.Errorf("sources digest: %w", err)
		}
		data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
		hasher.Write([]byte(relative))
		hasher.Write([]byte{0})
		hasher.Write(data)
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Update recomputes the digest and rewrites the header macro when it
// differs from what is recorded. Returns whether the header changed
// and the current digest. The macro line must already exist; the
// header is generated once by hand and only its value maintained
// here.
func (d DigestSpec) Update() (bool, string, error) {
	digest, err := d.Compute()
	if err != nil {
		return false, "", err
	}

	headerPath := filepath.Join(d.Root, d.Header)
	data, err := os.ReadFile(headerPath)
	if err != nil {
		return false, "", fmt.Errorf("reading digest header: %w", err)
	}
	content := string(data)

	pattern := regexp.MustCompile(`(?m)^#define\s+` + regexp.QuoteMeta(d.Macro) + `\s+([0-9a-f]+)`)
	match := pattern.FindStringSubmatchIndex(content)
	if match == nil {
		return false, "", fmt.Errorf("%s: no %s found", headerPath, d.Macro)
	}
	if content[match[2]:match[3]] == digest {
		return false, digest, nil
	}

	content = content[:match[2]] + digest + content[match[3]:]
	if err := os.WriteFile(headerPath, []byte(content), 0o644); err != nil {
		return false, "", fmt.Errorf("writing digest header: %w", err)
	}
	return true, digest, nil
}
