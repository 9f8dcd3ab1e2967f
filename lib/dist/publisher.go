// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package dist

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/distforge/distforge/lib/pkgcmp"
)

// Outcome is the publish decision for one artifact.
type Outcome int

const (
	// OutcomeUnchanged: a published artifact with equivalent content
	// already exists; the candidate was discarded.
	OutcomeUnchanged Outcome = iota

	// OutcomeCreated: no artifact of this name was published before.
	OutcomeCreated

	// OutcomeUpdated: the published artifact differed (or force was
	// set) and was replaced.
	OutcomeUpdated
)

// String returns the outcome name as shown in the run summary.
func (o Outcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return fmt.Sprintf("unknown(%d)", int(o))
	}
}

// Request describes one publish attempt.
type Request struct {
	// BuildDir is the directory the build step wrote its outputs to.
	BuildDir string

	// Pattern is the glob (relative to BuildDir) that must match
	// exactly one candidate file.
	Pattern string

	// Format selects the equivalence check.
	Format pkgcmp.Format

	// Version must appear as a substring of the candidate file name.
	Version string

	// PublishDir is the dist directory; created if absent.
	PublishDir string

	// StalePattern, when set, is a glob (relative to PublishDir)
	// whose matches from other versions are deleted before
	// publishing.
	StalePattern string

	// Force skips the equivalence check and always replaces.
	Force bool
}

// Result is the successful outcome of a publish attempt.
type Result struct {
	// Outcome is the publish decision.
	Outcome Outcome

	// AssetName is the canonical artifact file name.
	AssetName string

	// Path is the artifact's location in the publish directory.
	Path string
}

// Publisher performs build-compare-publish for single artifacts. It
// is stateless apart from its logger; the dist directory itself is
// the record of what was last shipped.
type Publisher struct {
	logger *slog.Logger
}

// NewPublisher returns a Publisher logging decisions to logger.
func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// Publish locates the single candidate in the build output, verifies
// the build contract, and promotes the candidate into the publish
// directory unless an equivalent artifact is already published.
//
// On any error the publish directory is left as it was, except for
// stale-version purging, which is housekeeping independent of the
// publish decision.
func (p *Publisher) Publish(request Request) (*Result, error) {
	matches, err := filepath.Glob(filepath.Join(request.BuildDir, request.Pattern))
	if err != nil {
		return nil, fmt.Errorf("globbing %q in %s: %w", request.Pattern, request.BuildDir, err)
	}
	if len(matches) != 1 {
		return nil, &AmbiguousArtifactError{Pattern: request.Pattern, Matches: matches}
	}
	candidate := matches[0]

	if _, err := os.Stat(candidate); err != nil {
		return nil, fmt.Errorf("candidate %s: %w", candidate, err)
	}

	assetName := filepath.Base(candidate)
	if !strings.Contains(assetName, request.Version) {
		return nil, &VersioningError{Name: assetName, Version: request.Version}
	}

	if err := os.MkdirAll(request.PublishDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating publish directory %s: %w", request.PublishDir, err)
	}

	if request.StalePattern != "" {
		if err := p.purgeStale(request.PublishDir, request.StalePattern, request.Version); err != nil {
			return nil, err
		}
	}

	published := filepath.Join(request.PublishDir, assetName)
	_, statErr := os.Stat(published)
	exists := statErr == nil
	if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
		return nil, fmt.Errorf("stat %s: %w", published, statErr)
	}

	if exists && !request.Force {
		equal, err := pkgcmp.Equal(request.Format, candidate, published)
		if err != nil {
			return nil, &ComparisonError{Candidate: candidate, Published: published, Err: err}
		}
		if equal {
			p.logger.Info("artifact unchanged", "asset", assetName)
			if err := os.Remove(candidate); err != nil {
				return nil, fmt.Errorf("discarding candidate %s: %w", candidate, err)
			}
			return &Result{Outcome: OutcomeUnchanged, AssetName: assetName, Path: published}, nil
		}
	}

	if err := p.replace(candidate, published); err != nil {
		return nil, err
	}

	outcome := OutcomeCreated
	if exists {
		outcome = OutcomeUpdated
	}
	p.logger.Info("artifact published", "asset", assetName, "outcome", outcome.String())
	return &Result{Outcome: outcome, AssetName: assetName, Path: published}, nil
}

// purgeStale removes artifacts matching pattern whose names belong to
// another version.
func (p *Publisher) purgeStale(publishDir, pattern, version string) error {
	matches, err := filepath.Glob(filepath.Join(publishDir, pattern))
	if err != nil {
		return fmt.Errorf("globbing stale pattern %q: %w", pattern, err)
	}
	for _, match := range matches {
		if strings.Contains(filepath.Base(match), version) {
			continue
		}
		p.logger.Info("removing stale artifact", "path", match)
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("removing stale artifact %s: %w", match, err)
		}
	}
	return nil
}

// replace promotes the candidate to the published path. The candidate
// first lands in a temp file inside the publish directory (rename
// when staging is on the same filesystem, copy otherwise), then a
// final rename swaps it in. The published path always holds either
// the old complete file or the new complete file.
func (p *Publisher) replace(candidate, published string) error {
	publishDir := filepath.Dir(published)

	tmpFile, err := os.CreateTemp(publishDir, ".publish-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", publishDir, err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := os.Rename(candidate, tmpPath); err != nil {
		// Cross-device staging: fall back to a copy into the temp
		// file, which stays invisible until the final rename.
		if err := copyFile(candidate, tmpPath); err != nil {
			return err
		}
		if err := os.Remove(candidate); err != nil {
			return fmt.Errorf("removing candidate %s: %w", candidate, err)
		}
	}

	if err := os.Rename(tmpPath, published); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, published, err)
	}
	success = true
	return nil
}

func copyFile(source, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening %s: %w", source, err)
	}
	defer in.Close()

	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", destination, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s to %s: %w", source, destination, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", destination, err)
	}
	return nil
}
