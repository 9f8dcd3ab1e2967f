// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package dist

import (
	"fmt"
	"strings"
)

// AmbiguousArtifactError reports that the build output directory did
// not contain exactly one file matching the expected pattern. This is
// a build misconfiguration, not a recoverable condition.
type AmbiguousArtifactError struct {
	Pattern string
	Matches []string
}

func (e *AmbiguousArtifactError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("no build output matches %q", e.Pattern)
	}
	return fmt.Sprintf("expected one build output matching %q, found %d: %s",
		e.Pattern, len(e.Matches), strings.Join(e.Matches, ", "))
}

// VersioningError reports that the candidate's file name does not
// embed the expected version string: the upstream build step and the
// version source disagree.
type VersioningError struct {
	Name    string
	Version string
}

func (e *VersioningError) Error() string {
	return fmt.Sprintf("expected version %q in artifact name %q", e.Version, e.Name)
}

// ComparisonError reports that the equivalence check between the
// candidate and the published artifact could not be computed. The
// publish decision never falls back to assuming "changed" or
// "unchanged" on a failed comparison.
type ComparisonError struct {
	Candidate string
	Published string
	Err       error
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("comparing %s against %s: %v", e.Candidate, e.Published, e.Err)
}

func (e *ComparisonError) Unwrap() error {
	return e.Err
}
