// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/distforge/distforge/cmd/distforge/commands"
	"github.com/distforge/distforge/lib/version"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like compare and
		// doctor) return an ExitError with the desired exit code.
		// Don't print a redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]
	if len(args) == 1 && args[0] == "--version" {
		fmt.Printf("distforge %s\n", version.Full())
		return nil
	}
	return commands.Root().Execute(args)
}
