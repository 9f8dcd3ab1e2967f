// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package compare implements "distforge compare", the standalone
// content-equivalence check between two artifacts.
package compare

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/distforge/distforge/cmd/distforge/cli"
	"github.com/distforge/distforge/lib/pkgcmp"
)

// Command returns the "distforge compare" command.
func Command() *cli.Command {
	var formatName string

	return &cli.Command{
		Name:    "compare",
		Summary: "Check whether two artifacts have equivalent content",
		Description: `Compare two artifacts the way the publisher does: by member names and
content, ignoring timestamps, compression settings, and other build
metadata. Exits 0 when the artifacts are equivalent and 1 when they
differ.`,
		Usage: "distforge compare <a> <b> [flags]",
		Examples: []cli.Example{
			{
				Description: "Compare two builds of the same package",
				Command:     "distforge compare dist/ta-lib_0.6.4_amd64.deb build/ta-lib_0.6.4_amd64.deb",
			},
			{
				Description: "Override the format detected from the file name",
				Command:     "distforge compare old.bin new.bin --format tarball",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("compare", pflag.ContinueOnError)
			flags.StringVar(&formatName, "format", "", "artifact format (default: detect from file name)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("expected two artifact paths, got %d", len(args))
			}
			return runCompare(args[0], args[1], formatName)
		},
	}
}

func runCompare(pathA, pathB, formatName string) error {
	var format pkgcmp.Format
	var err error
	if formatName != "" {
		format, err = pkgcmp.ParseFormat(formatName)
	} else {
		format, err = pkgcmp.DetectFormat(pathA)
	}
	if err != nil {
		return err
	}

	equal, err := pkgcmp.Equal(format, pathA, pathB)
	if err != nil {
		return err
	}
	if !equal {
		fmt.Println("different")
		return &cli.ExitError{Code: 1}
	}
	fmt.Println("equivalent")
	return nil
}
