// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor implements "distforge doctor", the host capability
// report.
package doctor

import (
	"fmt"
	"os"

	"github.com/distforge/distforge/cmd/distforge/cli"
	"github.com/distforge/distforge/lib/buildtool"
	"github.com/distforge/distforge/lib/pkgcmp"
	"github.com/distforge/distforge/lib/platform"
	"github.com/distforge/distforge/lib/release"
)

// Command returns the "distforge doctor" command.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "doctor",
		Summary: "Report what this host can build",
		Description: `Identify the host's distribution family and architecture, probe for
the external build tools, and report which artifact formats a release
run would build here. Exits 1 when a buildable format is missing a
tool.`,
		Usage: "distforge doctor",
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runDoctor()
		},
	}
}

func runDoctor() error {
	host, err := platform.Detect()
	if err != nil {
		return err
	}

	fmt.Printf("host: %s", host.OS)
	if host.Distribution != "" {
		fmt.Printf(" (%s)", host.Distribution)
	}
	fmt.Printf(", family %s, arch %s\n\n", host.Family, host.Arch)

	formats := []pkgcmp.Format{
		pkgcmp.FormatTarball,
		pkgcmp.FormatDeb,
		pkgcmp.FormatRpm,
		pkgcmp.FormatZip,
		pkgcmp.FormatMsi,
	}

	broken := false
	for _, format := range formats {
		if !host.CanBuild(format) {
			fmt.Printf("  %-8s not buildable on this host\n", format)
			continue
		}
		missing := missingTools(format)
		if len(missing) == 0 {
			fmt.Printf("  %-8s ok\n", format)
			continue
		}
		broken = true
		fmt.Printf("  %-8s missing tools: %v\n", format, missing)
	}

	if broken {
		fmt.Fprintln(os.Stderr, "\ninstall the missing tools to build these formats")
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func missingTools(format pkgcmp.Format) []string {
	var missing []string
	for _, tool := range release.FormatTools[format] {
		if !buildtool.Installed(tool) {
			missing = append(missing, tool)
		}
	}
	return missing
}
