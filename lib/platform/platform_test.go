// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"testing"

	"github.com/distforge/distforge/lib/pkgcmp"
)

const ubuntuRelease = `PRETTY_NAME="Ubuntu 24.04.1 LTS"
NAME="Ubuntu"
VERSION_ID="24.04"
ID=ubuntu
ID_LIKE=debian
`

const rockyRelease = `NAME="Rocky Linux"
ID="rocky"
ID_LIKE="rhel centos fedora"
`

const mintRelease = `NAME="Linux Mint"
ID=linuxmint
ID_LIKE=ubuntu
`

const archRelease = `NAME="Arch Linux"
ID=arch
`

func TestFamilyOf(t *testing.T) {
	cases := []struct {
		name    string
		content string
		family  Family
	}{
		{"ubuntu", ubuntuRelease, FamilyDebian},
		{"rocky", rockyRelease, FamilyRedHat},
		{"mint via ID_LIKE", mintRelease, FamilyDebian},
		{"arch", archRelease, FamilyUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			family := familyOf(parseOSRelease(c.content))
			if family != c.family {
				t.Errorf("family = %v, want %v", family, c.family)
			}
		})
	}
}

func TestParseOSRelease(t *testing.T) {
	fields := parseOSRelease(ubuntuRelease)
	if fields["ID"] != "ubuntu" {
		t.Errorf("ID = %q, want ubuntu", fields["ID"])
	}
	if fields["PRETTY_NAME"] != "Ubuntu 24.04.1 LTS" {
		t.Errorf("quotes not stripped: %q", fields["PRETTY_NAME"])
	}
	if fields["ID_LIKE"] != "debian" {
		t.Errorf("ID_LIKE = %q", fields["ID_LIKE"])
	}
}

func TestCanBuild(t *testing.T) {
	ubuntu := &Host{OS: "linux", Family: FamilyDebian, Distribution: "ubuntu"}
	debian := &Host{OS: "linux", Family: FamilyDebian, Distribution: "debian"}
	redhat := &Host{OS: "linux", Family: FamilyRedHat, Distribution: "fedora"}
	windows := &Host{OS: "windows", Family: FamilyWindows}

	cases := []struct {
		host   *Host
		format pkgcmp.Format
		want   bool
	}{
		{ubuntu, pkgcmp.FormatTarball, true},
		{ubuntu, pkgcmp.FormatDeb, true},
		{ubuntu, pkgcmp.FormatZip, false},
		{debian, pkgcmp.FormatTarball, false},
		{debian, pkgcmp.FormatDeb, true},
		{debian, pkgcmp.FormatRpm, false},
		{debian, pkgcmp.FormatMsi, false},
		{redhat, pkgcmp.FormatRpm, true},
		{redhat, pkgcmp.FormatDeb, false},
		{redhat, pkgcmp.FormatTarball, false},
		{windows, pkgcmp.FormatMsi, true},
		{windows, pkgcmp.FormatZip, true},
		{windows, pkgcmp.FormatTarball, false},
		{windows, pkgcmp.FormatDeb, false},
	}
	for _, c := range cases {
		if got := c.host.CanBuild(c.format); got != c.want {
			t.Errorf("%s host CanBuild(%v) = %v, want %v", c.host.Family, c.format, got, c.want)
		}
	}
}
