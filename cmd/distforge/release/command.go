// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package release implements "distforge release", the orchestrated
// packaging run.
package release

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"

	"github.com/distforge/distforge/cmd/distforge/cli"
	"github.com/distforge/distforge/lib/buildtool"
	"github.com/distforge/distforge/lib/config"
	"github.com/distforge/distforge/lib/dist"
	"github.com/distforge/distforge/lib/distmanifest"
	"github.com/distforge/distforge/lib/pkgcmp"
	"github.com/distforge/distforge/lib/platform"
	"github.com/distforge/distforge/lib/release"
	"github.com/distforge/distforge/lib/versionfile"
)

type params struct {
	configPath string
	manifest   string
	distDir    string
	buildRoot  string
	formats    []string
	force      bool
	verify     bool
	sudoPass   bool
}

// Command returns the "distforge release" command.
func Command() *cli.Command {
	var p params

	return &cli.Command{
		Name:    "release",
		Summary: "Build, compare, and publish all release artifacts",
		Description: `Run the packaging pipeline: synchronize the project version across
its sources, build each declared artifact format, and publish into
the dist directory only the artifacts whose content actually changed.
Formats the current host cannot build are skipped.`,
		Usage: "distforge release [flags]",
		Examples: []cli.Example{
			{
				Description: "Publish everything that changed",
				Command:     "distforge release",
			},
			{
				Description: "Republish the deb regardless of comparison",
				Command:     "distforge release --formats deb --force",
			},
			{
				Description: "Verify native packages by installing them",
				Command:     "distforge release --verify --sudo-pass",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("release", pflag.ContinueOnError)
			flags.StringVar(&p.configPath, "config", "", "config file (overrides DISTFORGE_CONFIG)")
			flags.StringVar(&p.manifest, "manifest", "", "packaging manifest (default from config)")
			flags.StringVar(&p.distDir, "dist", "", "publish directory (default from config)")
			flags.StringVar(&p.buildRoot, "build-root", "", "scratch build directory (default from config)")
			flags.StringSliceVar(&p.formats, "formats", nil, "restrict the run to these formats")
			flags.BoolVar(&p.force, "force", false, "publish regardless of content comparison")
			flags.BoolVar(&p.verify, "verify", false, "install and check published native packages")
			flags.BoolVarP(&p.sudoPass, "sudo-pass", "p", false, "prompt for a sudo password for verification")
			return flags
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runRelease(p)
		},
	}
}

func runRelease(p params) error {
	configuration, err := loadConfig(p.configPath)
	if err != nil {
		return err
	}
	logger := cli.NewCommandLogger(configuration.Log.Level).With("command", "release")

	manifestPath := p.manifest
	if manifestPath == "" {
		manifestPath = configuration.Paths.Manifest
	}
	manifest, err := distmanifest.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	if issues := distmanifest.Validate(manifest); len(issues) > 0 {
		return fmt.Errorf("invalid manifest %s:\n  %s", manifestPath, strings.Join(issues, "\n  "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Version sync first: every artifact of this run must carry the
	// same version, and the highest declared one wins.
	sources, err := manifest.VersionSources()
	if err != nil {
		return err
	}
	synced, err := versionfile.Sync(sources)
	if err != nil {
		return err
	}
	for _, path := range synced.Updated {
		logger.Info("version source updated", "path", path, "version", synced.Version.String())
	}

	if digest := manifest.Digest(); digest != nil {
		changed, _, err := digest.Update()
		if err != nil {
			return err
		}
		if changed {
			logger.Info("sources digest updated", "header", digest.Header)
		}
	}

	host, err := platform.Detect()
	if err != nil {
		return err
	}

	environment := release.BuildEnvironment{
		SourceDir: manifest.Root(),
		Version:   synced.Version.String(),
		Defines:   manifest.Defines,
	}
	if p.verify && p.sudoPass {
		sudo, err := buildtool.PromptPassword("sudo password: ")
		if err != nil {
			return err
		}
		environment.Sudo = sudo
	}

	steps, err := release.ProjectSteps(manifest, environment)
	if err != nil {
		return err
	}
	steps, err = filterSteps(steps, p.formats)
	if err != nil {
		return err
	}

	runner := release.NewRunner(logger, dist.NewPublisher(logger))
	runner.BuildRoot = firstNonEmpty(p.buildRoot, configuration.Paths.BuildRoot)
	runner.DistDir = firstNonEmpty(p.distDir, configuration.Paths.Dist)
	runner.Version = synced.Version.String()
	runner.Force = p.force
	runner.Verify = p.verify

	// Failures abort with their diagnostic; the summary is only for
	// completed runs.
	results, runErr := runner.Run(ctx, host, steps)
	if runErr != nil {
		return runErr
	}
	fmt.Print(release.Summary(manifest.Project, runner.Version, results))
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// filterSteps restricts the run to the named formats, preserving the
// canonical order.
func filterSteps(steps []release.Step, names []string) ([]release.Step, error) {
	if len(names) == 0 {
		return steps, nil
	}
	wanted := make(map[pkgcmp.Format]bool, len(names))
	for _, name := range names {
		format, err := pkgcmp.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		wanted[format] = true
	}
	var filtered []release.Step
	for _, step := range steps {
		if wanted[step.Format] {
			filtered = append(filtered, step)
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no declared format matches --formats %s", strings.Join(names, ","))
	}
	return filtered, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
