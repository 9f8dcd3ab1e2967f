// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package pkgcmp

import (
	"fmt"
	"strings"
)

// Format identifies an artifact format with a dedicated equivalence
// check.
type Format int

const (
	// FormatZip is a plain-file archive (zip).
	FormatZip Format = iota

	// FormatTarball is a compressed tar archive (tar.gz, tar.zst,
	// tar.lz4, or uncompressed tar).
	FormatTarball

	// FormatDeb is a Debian binary package.
	FormatDeb

	// FormatRpm is an RPM binary package.
	FormatRpm

	// FormatMsi is a Windows Installer package (OLE compound file).
	FormatMsi
)

// String returns the human-readable name of the format.
func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTarball:
		return "tarball"
	case FormatDeb:
		return "deb"
	case FormatRpm:
		return "rpm"
	case FormatMsi:
		return "msi"
	default:
		return fmt.Sprintf("unknown(%d)", int(f))
	}
}

// ParseFormat converts a format name (as accepted on the command
// line) to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "zip":
		return FormatZip, nil
	case "tarball", "tar", "tar.gz", "tgz":
		return FormatTarball, nil
	case "deb":
		return FormatDeb, nil
	case "rpm":
		return FormatRpm, nil
	case "msi":
		return FormatMsi, nil
	default:
		return 0, fmt.Errorf("unknown artifact format %q", name)
	}
}

// DetectFormat maps a file name to its artifact format by extension.
func DetectFormat(path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip, nil
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"),
		strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tar.lz4"),
		strings.HasSuffix(lower, ".tar"):
		return FormatTarball, nil
	case strings.HasSuffix(lower, ".deb"):
		return FormatDeb, nil
	case strings.HasSuffix(lower, ".rpm"):
		return FormatRpm, nil
	case strings.HasSuffix(lower, ".msi"):
		return FormatMsi, nil
	default:
		return 0, fmt.Errorf("cannot detect artifact format from file name %q", path)
	}
}

// Equal reports whether the artifacts at pathA and pathB are
// content-equivalent under the given format's comparison rules.
// An error means the comparison could not be computed (unreadable or
// corrupt input), never that the artifacts differ.
func Equal(format Format, pathA, pathB string) (bool, error) {
	switch format {
	case FormatZip:
		return EqualZip(pathA, pathB)
	case FormatTarball:
		return EqualTarball(pathA, pathB)
	case FormatDeb:
		return EqualDeb(pathA, pathB)
	case FormatRpm:
		return EqualRpm(pathA, pathB)
	case FormatMsi:
		return EqualMsi(pathA, pathB)
	default:
		return false, fmt.Errorf("no comparator for format %v", format)
	}
}
