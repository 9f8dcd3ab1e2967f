// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete distforge CLI command tree.
package commands

import (
	comparecmd "github.com/distforge/distforge/cmd/distforge/compare"
	doctorcmd "github.com/distforge/distforge/cmd/distforge/doctor"
	versioncmd "github.com/distforge/distforge/cmd/distforge/projectversion"
	releasecmd "github.com/distforge/distforge/cmd/distforge/release"

	"github.com/distforge/distforge/cmd/distforge/cli"
)

// Root builds and returns the complete distforge CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "distforge",
		Description: `distforge: idempotent release packaging.

Build a project's release artifacts (source tarball, deb, rpm, zip,
msi), compare them content-wise against what is already published,
and replace only what actually changed.`,
		Subcommands: []*cli.Command{
			releasecmd.Command(),
			comparecmd.Command(),
			versioncmd.Command(),
			doctorcmd.Command(),
		},
		Examples: []cli.Example{
			{
				Description: "Publish everything that changed",
				Command:     "distforge release",
			},
			{
				Description: "See what this host can build",
				Command:     "distforge doctor",
			},
		},
	}
}
