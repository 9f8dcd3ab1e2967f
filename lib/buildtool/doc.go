// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildtool provides typed access to the build CLIs a
// packaging run drives: cmake/cpack for the CMake-based formats and
// autoreconf/configure/make for the autotools source tarball. All
// commands target explicit directories; there is no default directory
// and no process-wide chdir, so concurrent steps cannot trample each
// other.
//
// Sudo wraps privileged commands (installing a built package for
// verification) and feeds the password over stdin, so a run can
// prompt once up front and never again.
package buildtool
