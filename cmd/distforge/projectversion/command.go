// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package projectversion implements "distforge version", inspecting
// and synchronizing the packaged project's version across its
// declared sources.
package projectversion

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/distforge/distforge/cmd/distforge/cli"
	"github.com/distforge/distforge/lib/config"
	"github.com/distforge/distforge/lib/distmanifest"
	"github.com/distforge/distforge/lib/versionfile"
)

// Command returns the "distforge version" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Inspect or synchronize the project version",
		Subcommands: []*cli.Command{
			showCommand(),
			syncCommand(),
		},
	}
}

func showCommand() *cli.Command {
	var manifestPath string

	return &cli.Command{
		Name:    "show",
		Summary: "Print the version each source declares",
		Usage:   "distforge version show [flags]",
		Flags:   manifestFlag(&manifestPath),
		Run: func(args []string) error {
			manifest, sources, err := loadSources(manifestPath)
			if err != nil {
				return err
			}
			highest := versionfile.Version{}
			for _, source := range sources {
				declared, err := source.Read()
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%s\n", declared, source.Path)
				if declared.Compare(highest) > 0 {
					highest = declared
				}
			}
			fmt.Printf("%s\t(%s)\n", highest, manifest.Project)
			return nil
		},
	}
}

func syncCommand() *cli.Command {
	var manifestPath string

	return &cli.Command{
		Name:    "sync",
		Summary: "Rewrite lagging sources to the highest declared version",
		Usage:   "distforge version sync [flags]",
		Examples: []cli.Example{
			{
				Description: "Bump VERSION, then propagate everywhere",
				Command:     "distforge version sync",
			},
		},
		Flags: manifestFlag(&manifestPath),
		Run: func(args []string) error {
			manifest, sources, err := loadSources(manifestPath)
			if err != nil {
				return err
			}
			result, err := versionfile.Sync(sources)
			if err != nil {
				return err
			}
			for _, path := range result.Updated {
				fmt.Printf("updated\t%s\n", path)
			}
			fmt.Printf("%s\t(%s)\n", result.Version, manifest.Project)

			if digest := manifest.Digest(); digest != nil {
				changed, value, err := digest.Update()
				if err != nil {
					return err
				}
				if changed {
					fmt.Printf("digest\t%s\n", value)
				}
			}
			return nil
		},
	}
}

func manifestFlag(path *string) func() *pflag.FlagSet {
	return func() *pflag.FlagSet {
		flags := pflag.NewFlagSet("version", pflag.ContinueOnError)
		flags.StringVar(path, "manifest", "", "packaging manifest (default from config)")
		return flags
	}
}

func loadSources(manifestPath string) (*distmanifest.Manifest, []versionfile.Source, error) {
	if manifestPath == "" {
		configuration, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		manifestPath = configuration.Paths.Manifest
	}
	manifest, err := distmanifest.ReadFile(manifestPath)
	if err != nil {
		return nil, nil, err
	}
	sources, err := manifest.VersionSources()
	if err != nil {
		return nil, nil, err
	}
	return manifest, sources, nil
}
