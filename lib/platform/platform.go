// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package platform identifies the host a packaging run executes on and
// decides which artifact formats that host can build. Every format is
// tied to an ecosystem: .deb artifacts come out of Debian-family
// hosts, .rpm out of RedHat-family hosts, .zip and .msi out of
// Windows, and the autotools source tarball out of Ubuntu, the one
// distribution the release toolchain is maintained against. A run
// skips the formats its host cannot build instead of failing on them.
package platform

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/distforge/distforge/lib/pkgcmp"
)

// Family is the packaging ecosystem of the host distribution.
type Family int

const (
	FamilyUnknown Family = iota
	FamilyDebian
	FamilyRedHat
	FamilyWindows
	FamilyDarwin
)

// String returns the family name.
func (f Family) String() string {
	switch f {
	case FamilyDebian:
		return "debian"
	case FamilyRedHat:
		return "redhat"
	case FamilyWindows:
		return "windows"
	case FamilyDarwin:
		return "darwin"
	default:
		return "unknown"
	}
}

// Host describes the machine a run executes on.
type Host struct {
	// OS is runtime.GOOS.
	OS string

	// Family is the packaging ecosystem, derived from /etc/os-release
	// on Linux.
	Family Family

	// Distribution is the os-release ID (ubuntu, debian, fedora);
	// empty outside Linux.
	Distribution string

	// Arch is the machine hardware name from uname (x86_64, aarch64).
	Arch string
}

// Detect identifies the current host.
func Detect() (*Host, error) {
	host := &Host{OS: runtime.GOOS}

	switch runtime.GOOS {
	case "windows":
		host.Family = FamilyWindows
	case "darwin":
		host.Family = FamilyDarwin
	case "linux":
		data, err := os.ReadFile("/etc/os-release")
		if err != nil {
			return nil, fmt.Errorf("reading /etc/os-release: %w", err)
		}
		release := parseOSRelease(string(data))
		host.Distribution = release["ID"]
		host.Family = familyOf(release)
	}

	arch, err := hostArch()
	if err != nil {
		return nil, err
	}
	host.Arch = arch
	return host, nil
}

// CanBuild reports whether this host can build artifacts of the given
// format. The source tarball comes out of the autotools toolchain and
// is only produced on Ubuntu; the zip bundles Windows build products
// and shares Windows with the msi.
func (h *Host) CanBuild(format pkgcmp.Format) bool {
	switch format {
	case pkgcmp.FormatTarball:
		return h.Family == FamilyDebian && h.Distribution == "ubuntu"
	case pkgcmp.FormatZip:
		return h.Family == FamilyWindows
	case pkgcmp.FormatDeb:
		return h.Family == FamilyDebian
	case pkgcmp.FormatRpm:
		return h.Family == FamilyRedHat
	case pkgcmp.FormatMsi:
		return h.Family == FamilyWindows
	default:
		return false
	}
}

// parseOSRelease parses os-release(5) key=value content. Values may
// be quoted; blank lines and # comments are skipped.
func parseOSRelease(content string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"'`)
		fields[key] = value
	}
	return fields
}

// familyOf maps os-release identification to a packaging family,
// checking ID first and falling back to ID_LIKE for derivatives
// (linuxmint declares ID_LIKE=ubuntu, rocky declares ID_LIKE="rhel
// centos fedora").
func familyOf(release map[string]string) Family {
	ids := []string{release["ID"]}
	ids = append(ids, strings.Fields(release["ID_LIKE"])...)
	for _, id := range ids {
		switch id {
		case "debian", "ubuntu":
			return FamilyDebian
		case "rhel", "fedora", "centos", "rocky", "almalinux", "amzn":
			return FamilyRedHat
		}
	}
	return FamilyUnknown
}
