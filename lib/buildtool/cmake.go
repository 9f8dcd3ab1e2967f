// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package buildtool

import (
	"context"
	"fmt"
	"sort"
)

// CMake drives one CMake build tree. The source and build directories
// are fixed at construction; every command names them explicitly so
// the working directory of the calling process never matters.
type CMake struct {
	sourceDir string
	buildDir  string
}

// NewCMake returns a CMake targeting the given source and build
// directories. The build directory is created by Configure.
func NewCMake(sourceDir, buildDir string) *CMake {
	return &CMake{sourceDir: sourceDir, buildDir: buildDir}
}

// BuildDir returns the build tree directory.
func (c *CMake) BuildDir() string {
	return c.buildDir
}

// Configure generates the build tree. Defines are passed as
// -D<name>=<value> cache entries in sorted order so the command line
// is stable across runs.
func (c *CMake) Configure(ctx context.Context, defines map[string]string) (string, error) {
	args := []string{"-S", c.sourceDir, "-B", c.buildDir}
	names := make([]string, 0, len(defines))
	for name := range defines {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args = append(args, fmt.Sprintf("-D%s=%s", name, defines[name]))
	}
	return run(ctx, c.sourceDir, "cmake", args...)
}

// Build compiles the configured tree. Config selects the multi-config
// generator configuration (Release, Debug); empty means the
// generator's default.
func (c *CMake) Build(ctx context.Context, config string) (string, error) {
	args := []string{"--build", c.buildDir}
	if config != "" {
		args = append(args, "--config", config)
	}
	return run(ctx, c.sourceDir, "cmake", args...)
}

// CPack packages the built tree with the given generator (DEB, RPM,
// ZIP, WIX). CPack writes its output into the build directory, so it
// runs from there.
func (c *CMake) CPack(ctx context.Context, generator, config string) (string, error) {
	args := []string{"-G", generator}
	if config != "" {
		args = append(args, "-C", config)
	}
	return run(ctx, c.buildDir, "cpack", args...)
}
