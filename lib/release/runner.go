// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/distforge/distforge/lib/buildtool"
	"github.com/distforge/distforge/lib/dist"
	"github.com/distforge/distforge/lib/pkgcmp"
	"github.com/distforge/distforge/lib/platform"
)

// Runner executes an ordered packaging run.
type Runner struct {
	logger    *slog.Logger
	publisher *dist.Publisher

	// BuildRoot holds one scratch directory per format.
	BuildRoot string

	// DistDir is the publish directory.
	DistDir string

	// Version is the project version artifacts must carry.
	Version string

	// Force publishes every artifact regardless of content
	// comparison.
	Force bool

	// Verify runs each step's verification hook on the published
	// artifact.
	Verify bool
}

// NewRunner returns a Runner publishing through the given publisher.
func NewRunner(logger *slog.Logger, publisher *dist.Publisher) *Runner {
	return &Runner{logger: logger, publisher: publisher}
}

// Run executes steps in order on the given host. Unbuildable formats
// are skipped; the first build, publish, or verification failure ends
// the run. The returned results cover every step that was reached,
// including the one that failed.
func (r *Runner) Run(ctx context.Context, host *platform.Host, steps []Step) ([]StepResult, error) {
	var results []StepResult

	// The zip payload feeds the msi, so a changed zip forces the msi
	// publish.
	forceMsi := false

	for _, step := range steps {
		if !host.CanBuild(step.Format) {
			reason := fmt.Sprintf("%s artifacts require %s host", step.Format, requiredHost(step.Format))
			r.logger.Info("skipping format", "format", step.Format.String(), "reason", reason)
			results = append(results, StepResult{Format: step.Format, Skipped: true, Reason: reason})
			continue
		}

		if missing := missingTool(step.Tools); missing != "" {
			if step.Optional {
				reason := fmt.Sprintf("%s is not installed", missing)
				r.logger.Info("skipping format", "format", step.Format.String(), "reason", reason)
				results = append(results, StepResult{Format: step.Format, Skipped: true, Reason: reason})
				continue
			}
			results = append(results, StepResult{Format: step.Format, Failed: true})
			return results, fmt.Errorf("%s: required tool %q is not installed", step.Format, missing)
		}

		result, err := r.runStep(ctx, step, forceMsi)
		if result != nil {
			results = append(results, *result)
		}
		if err != nil {
			return results, fmt.Errorf("%s: %w", step.Format, err)
		}

		if step.Format == pkgcmp.FormatZip && result.Outcome != dist.OutcomeUnchanged {
			forceMsi = true
		}
	}
	return results, nil
}

func (r *Runner) runStep(ctx context.Context, step Step, forceMsi bool) (*StepResult, error) {
	buildDir := filepath.Join(r.BuildRoot, step.Format.String())
	if err := os.RemoveAll(buildDir); err != nil {
		return nil, fmt.Errorf("clearing build directory: %w", err)
	}
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating build directory: %w", err)
	}

	r.logger.Info("building", "format", step.Format.String())
	if err := step.Build(ctx, buildDir); err != nil {
		return &StepResult{Format: step.Format, Failed: true}, err
	}

	force := r.Force
	if step.Format == pkgcmp.FormatMsi && forceMsi {
		force = true
	}

	publishResult, err := r.publisher.Publish(dist.Request{
		BuildDir:     buildDir,
		Pattern:      step.Artifact.Pattern,
		Format:       step.Format,
		Version:      r.Version,
		PublishDir:   r.DistDir,
		StalePattern: step.Artifact.StalePattern(),
		Force:        force,
	})
	if err != nil {
		return &StepResult{Format: step.Format, Failed: true}, err
	}

	result := &StepResult{
		Format:    step.Format,
		Outcome:   publishResult.Outcome,
		AssetName: publishResult.AssetName,
	}

	if r.Verify && step.Verify != nil {
		r.logger.Info("verifying", "asset", publishResult.AssetName)
		if err := step.Verify(ctx, publishResult.Path); err != nil {
			result.Failed = true
			return result, fmt.Errorf("verifying %s: %w", publishResult.AssetName, err)
		}
		result.Verified = true
	}
	return result, nil
}

// requiredHost names the host a format needs, for skip diagnostics.
func requiredHost(format pkgcmp.Format) string {
	switch format {
	case pkgcmp.FormatTarball:
		return "an Ubuntu"
	case pkgcmp.FormatDeb:
		return "a Debian-family"
	case pkgcmp.FormatRpm:
		return "a RedHat-family"
	case pkgcmp.FormatZip, pkgcmp.FormatMsi:
		return "a Windows"
	default:
		return "a supported"
	}
}

// missingTool returns the first tool from the list absent from PATH,
// or "" when everything is present.
func missingTool(tools []string) string {
	for _, tool := range tools {
		if !buildtool.Installed(tool) {
			return tool
		}
	}
	return ""
}
