// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package buildtool

import "context"

// Autotools drives an autotools source tree in place. The source
// tarball comes out of "make dist", so the tree must have been
// bootstrapped (Autoreconf) and configured first.
type Autotools struct {
	dir string
}

// NewAutotools returns an Autotools targeting the given source tree.
func NewAutotools(dir string) *Autotools {
	return &Autotools{dir: dir}
}

// Dir returns the source tree directory.
func (a *Autotools) Dir() string {
	return a.dir
}

// Autoreconf bootstraps the build system, installing any missing
// auxiliary files.
func (a *Autotools) Autoreconf(ctx context.Context) (string, error) {
	return run(ctx, a.dir, "autoreconf", "--install")
}

// Configure runs the generated configure script with the given
// arguments.
func (a *Autotools) Configure(ctx context.Context, args ...string) (string, error) {
	return run(ctx, a.dir, "./configure", args...)
}

// Make runs make with the given targets.
func (a *Autotools) Make(ctx context.Context, targets ...string) (string, error) {
	return run(ctx, a.dir, "make", targets...)
}

// MakeDist produces the distribution tarball in the source tree.
func (a *Autotools) MakeDist(ctx context.Context) (string, error) {
	return a.Make(ctx, "dist")
}
