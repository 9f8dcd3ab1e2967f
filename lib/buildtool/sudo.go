// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package buildtool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

// Sudo runs privileged commands with a password collected once up
// front. The password goes to sudo over stdin (-S) with an empty
// prompt, so nothing is echoed and no terminal interaction happens
// mid-run.
type Sudo struct {
	password string
}

// NewSudo returns a Sudo using the given password. An empty password
// is valid when sudo has cached credentials or NOPASSWD applies.
func NewSudo(password string) *Sudo {
	return &Sudo{password: password}
}

// PromptPassword reads a password from the terminal without echo and
// returns a Sudo using it. Fails when stdin is not a terminal.
func PromptPassword(prompt string) (*Sudo, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot prompt for sudo password: stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading sudo password: %w", err)
	}
	return NewSudo(string(password)), nil
}

// Run executes a command under sudo in dir and returns stdout. The
// password is written to sudo's stdin on every invocation; sudo's
// credential cache makes the repeats free.
func (s *Sudo) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	sudoArgs := append([]string{"-S", "-p", "", "--", name}, args...)

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, "sudo", sudoArgs...)
	command.Dir = dir
	command.Stdin = strings.NewReader(s.password + "\n")
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("sudo %s %s in %s: %w (stderr: %s)",
			name, strings.Join(args, " "), dir, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
