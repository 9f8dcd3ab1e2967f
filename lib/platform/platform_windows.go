// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package platform

import "runtime"

func hostArch() (string, error) {
	return runtime.GOARCH, nil
}
