// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package platform

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// hostArch returns the machine hardware name from uname (x86_64,
// aarch64).
func hostArch() (string, error) {
	var name unix.Utsname
	if err := unix.Uname(&name); err != nil {
		return "", fmt.Errorf("uname: %w", err)
	}
	return unix.ByteSliceToString(name.Machine[:]), nil
}
