// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/distforge/distforge/lib/buildtool"
	"github.com/distforge/distforge/lib/distmanifest"
	"github.com/distforge/distforge/lib/pkgcmp"
)

// stepOrder is the canonical build order. The source tarball comes
// first so a broken tree fails the run before any binary packaging;
// zip precedes msi because the installer embeds the zip payload.
var stepOrder = []pkgcmp.Format{
	pkgcmp.FormatTarball,
	pkgcmp.FormatDeb,
	pkgcmp.FormatRpm,
	pkgcmp.FormatZip,
	pkgcmp.FormatMsi,
}

// cpackGenerators maps formats to their CPack generator names.
var cpackGenerators = map[pkgcmp.Format]string{
	pkgcmp.FormatDeb: "DEB",
	pkgcmp.FormatRpm: "RPM",
	pkgcmp.FormatZip: "ZIP",
	pkgcmp.FormatMsi: "WIX",
}

// FormatTools lists the external commands each format's build shells
// out to. The runner checks them before building; doctor reports them.
var FormatTools = map[pkgcmp.Format][]string{
	pkgcmp.FormatTarball: {"autoreconf", "make"},
	pkgcmp.FormatZip:     {"cmake", "cpack"},
	pkgcmp.FormatDeb:     {"cmake", "cpack", "dpkg"},
	pkgcmp.FormatRpm:     {"cmake", "cpack", "rpmbuild"},
	pkgcmp.FormatMsi:     {"cmake", "cpack", "wix"},
}

// defaultDefines are the CMake cache entries every configure gets.
// Release packaging never ships the development tools.
var defaultDefines = map[string]string{
	"CMAKE_BUILD_TYPE": "Release",
	"BUILD_DEV_TOOLS":  "OFF",
}

// configureDefines overlays the environment's extra defines on the
// defaults.
func configureDefines(env BuildEnvironment) map[string]string {
	defines := make(map[string]string, len(defaultDefines)+len(env.Defines))
	for key, value := range defaultDefines {
		defines[key] = value
	}
	for key, value := range env.Defines {
		defines[key] = value
	}
	return defines
}

// BuildEnvironment carries what the project's build steps need beyond
// the manifest.
type BuildEnvironment struct {
	// SourceDir is the project checkout the builds run against.
	SourceDir string

	// Version is the project version, used where a build step must
	// name its own output.
	Version string

	// Defines are extra CMake cache entries applied to every
	// configure.
	Defines map[string]string

	// Sudo, when set, enables install-based verification for the
	// native package formats.
	Sudo *buildtool.Sudo
}

// ProjectSteps derives the ordered step list from the manifest's
// declared formats. The source tarball comes out of the autotools
// flow; every other format is a CMake configure/build/cpack cycle
// with the format's generator.
func ProjectSteps(manifest *distmanifest.Manifest, env BuildEnvironment) ([]Step, error) {
	var steps []Step
	for _, format := range stepOrder {
		artifact, declared := manifest.Formats[format.String()]
		if !declared {
			continue
		}

		step := Step{Format: format, Artifact: artifact, Tools: FormatTools[format]}
		switch {
		case format == pkgcmp.FormatTarball:
			step.Build = tarballBuild(env, artifact)
		case format == pkgcmp.FormatZip && manifest.ZipLayout != nil:
			step.Build = zipBuild(env, artifact, manifest.ZipLayout)
			// In-process zip assembly never touches cpack.
			step.Tools = []string{"cmake"}
		default:
			step.Build = cpackBuild(env, artifact, cpackGenerators[format])
		}

		// A host without WiX still releases everything else; every
		// other format's tooling is mandatory on its host.
		step.Optional = format == pkgcmp.FormatMsi

		switch format {
		case pkgcmp.FormatTarball:
			step.Verify = sourceVerify(env)
		case pkgcmp.FormatDeb:
			step.Verify = installVerify(env.Sudo, "dpkg", "-i")
		case pkgcmp.FormatRpm:
			step.Verify = installVerify(env.Sudo, "rpm", "--upgrade", "--force")
		}
		steps = append(steps, step)
	}

	for name := range manifest.Formats {
		if _, err := pkgcmp.ParseFormat(name); err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
	}
	return steps, nil
}

// tarballBuild runs the autotools dist flow in the source tree and
// moves the produced tarball into the scratch directory.
func tarballBuild(env BuildEnvironment, artifact distmanifest.Artifact) func(context.Context, string) error {
	return func(ctx context.Context, buildDir string) error {
		tools := buildtool.NewAutotools(env.SourceDir)
		if _, err := tools.Autoreconf(ctx); err != nil {
			return err
		}
		if _, err := tools.Configure(ctx); err != nil {
			return err
		}
		if _, err := tools.MakeDist(ctx); err != nil {
			return err
		}
		return moveMatches(env.SourceDir, artifact.Pattern, buildDir)
	}
}

// zipBuild compiles the tree and assembles the portable zip payload
// in-process from the manifest's layout, instead of going through a
// CPack generator.
func zipBuild(env BuildEnvironment, artifact distmanifest.Artifact, layout *distmanifest.ZipLayout) func(context.Context, string) error {
	return func(ctx context.Context, buildDir string) error {
		cmake := buildtool.NewCMake(env.SourceDir, filepath.Join(buildDir, "cmake"))
		if _, err := cmake.Configure(ctx, configureDefines(env)); err != nil {
			return err
		}
		if _, err := cmake.Build(ctx, "Release"); err != nil {
			return err
		}
		path := filepath.Join(buildDir, artifact.ArtifactName(env.Version))
		return writeZipPayload(path, cmake.BuildDir(), env.SourceDir, env.Version, layout)
	}
}

// cpackBuild runs a CMake configure/build/cpack cycle in a tree under
// the scratch directory and moves the packaged output up into it, so
// the publisher's glob sees only artifacts.
func cpackBuild(env BuildEnvironment, artifact distmanifest.Artifact, generator string) func(context.Context, string) error {
	return func(ctx context.Context, buildDir string) error {
		cmake := buildtool.NewCMake(env.SourceDir, filepath.Join(buildDir, "cmake"))
		if _, err := cmake.Configure(ctx, configureDefines(env)); err != nil {
			return err
		}
		if _, err := cmake.Build(ctx, "Release"); err != nil {
			return err
		}
		if _, err := cmake.CPack(ctx, generator, "Release"); err != nil {
			return err
		}
		return moveMatches(cmake.BuildDir(), artifact.Pattern, buildDir)
	}
}

// installVerify installs the published package with the given tool
// and arguments. Nil without sudo: verification needs root.
func installVerify(sudo *buildtool.Sudo, tool string, args ...string) func(context.Context, string) error {
	if sudo == nil {
		return nil
	}
	return func(ctx context.Context, artifactPath string) error {
		_, err := sudo.Run(ctx, filepath.Dir(artifactPath), tool, append(args, artifactPath)...)
		return err
	}
}

// moveMatches renames every file in fromDir matching pattern into
// toDir. The build and scratch directories share a filesystem, so a
// plain rename suffices.
func moveMatches(fromDir, pattern, toDir string) error {
	matches, err := filepath.Glob(filepath.Join(fromDir, pattern))
	if err != nil {
		return fmt.Errorf("globbing %q in %s: %w", pattern, fromDir, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("build produced nothing matching %q in %s", pattern, fromDir)
	}
	for _, match := range matches {
		destination := filepath.Join(toDir, filepath.Base(match))
		if err := os.Rename(match, destination); err != nil {
			return fmt.Errorf("moving %s: %w", match, err)
		}
	}
	return nil
}
