// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package buildtool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Installed reports whether the named tool is on PATH.
func Installed(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// run executes a command in dir and returns stdout. Stderr is captured
// separately and included in error messages on failure.
func run(ctx context.Context, dir, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, name, args...)
	command.Dir = dir
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("%s %s in %s: %w (stderr: %s)",
			name, strings.Join(args, " "), dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
