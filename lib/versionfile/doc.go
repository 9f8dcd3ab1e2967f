// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package versionfile manages the project version that is embedded in
// several files at once: a plain VERSION file, C #define macros, and
// CMake set() lines. Each embedding is a Source; Sync reads them all,
// takes the highest version as the truth, and rewrites the lower ones
// in place without disturbing the surrounding text.
//
// The package also computes the sources digest, a content hash over
// the files that feed the build, embedded as a macro in a generated
// header so CI can tell whether artifacts need repackaging.
package versionfile
