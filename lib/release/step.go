// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"context"

	"github.com/distforge/distforge/lib/dist"
	"github.com/distforge/distforge/lib/distmanifest"
	"github.com/distforge/distforge/lib/pkgcmp"
)

// Step builds one artifact format. The Build function drives the
// external tooling (cmake, cpack, make dist) and must leave exactly
// one file matching the artifact's pattern in the build directory.
type Step struct {
	// Format selects the equivalence check and the buildability
	// probe.
	Format pkgcmp.Format

	// Artifact is the manifest declaration for this format.
	Artifact distmanifest.Artifact

	// Tools are the external commands the build shells out to, checked
	// on PATH before the build runs.
	Tools []string

	// Optional marks a format the run can do without: missing tooling
	// skips the step instead of aborting the run.
	Optional bool

	// Build produces the artifact into buildDir.
	Build func(ctx context.Context, buildDir string) error

	// Verify, when set and verification is requested, checks the
	// published artifact (typically by installing it and exercising
	// the installed payload).
	Verify func(ctx context.Context, artifactPath string) error
}

// StepResult records what one step did.
type StepResult struct {
	// Format identifies the step.
	Format pkgcmp.Format

	// Skipped is set when the host cannot build this format; Reason
	// says why.
	Skipped bool
	Reason  string

	// Failed is set when the step's build, publish, or verification
	// failed; Outcome is meaningless then.
	Failed bool

	// Outcome and AssetName are the publish decision for steps that
	// ran.
	Outcome   dist.Outcome
	AssetName string

	// Verified is set when the artifact's verification hook ran.
	Verified bool
}
