// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package distmanifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/distforge/distforge/lib/pkgcmp"
	"github.com/distforge/distforge/lib/versionfile"
)

// Validate checks a Manifest for structural issues. Returns a list of
// human-readable issue descriptions. An empty list means the manifest
// is valid.
//
// Structural checks include:
//   - Project name is required
//   - At least one format must be declared
//   - Format keys must be known format names
//   - Each format needs a Template containing ${VERSION} and a Pattern
//   - At least one version source is required
//   - Version source paths must be relative; kinds must be known
//   - A digest block needs globs, a header, and a macro
func Validate(manifest *Manifest) []string {
	var issues []string

	if manifest.Project == "" {
		issues = append(issues, "project name is required")
	}

	if len(manifest.Formats) == 0 {
		issues = append(issues, "manifest declares no formats (at least one is required)")
	}
	for name, artifact := range manifest.Formats {
		prefix := fmt.Sprintf("formats[%q]", name)
		if _, err := pkgcmp.ParseFormat(name); err != nil {
			issues = append(issues, fmt.Sprintf("%s: unknown format name", prefix))
		}
		if artifact.Template == "" {
			issues = append(issues, fmt.Sprintf("%s: template is required", prefix))
		} else if !strings.Contains(artifact.Template, "${VERSION}") {
			issues = append(issues, fmt.Sprintf(
				"%s: template %q does not contain ${VERSION}; published names must embed the version",
				prefix, artifact.Template))
		}
		if artifact.Pattern == "" {
			issues = append(issues, fmt.Sprintf("%s: pattern is required", prefix))
		}
	}

	if len(manifest.Version.Sources) == 0 {
		issues = append(issues, "version.sources is empty (at least one source is required)")
	}
	for index, source := range manifest.Version.Sources {
		prefix := fmt.Sprintf("version.sources[%d]", index)
		if source.Path == "" {
			issues = append(issues, fmt.Sprintf("%s: path is required", prefix))
		} else if filepath.IsAbs(source.Path) {
			issues = append(issues, fmt.Sprintf(
				"%s: path %q must be relative to the manifest directory", prefix, source.Path))
		}
		if _, err := versionfile.ParseSourceKind(source.Kind); err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", prefix, err))
		}
	}

	if digest := manifest.Version.Digest; digest != nil {
		if len(digest.Globs) == 0 {
			issues = append(issues, "version.digest: globs is empty")
		}
		if digest.Header == "" {
			issues = append(issues, "version.digest: header is required")
		} else if filepath.IsAbs(digest.Header) {
			issues = append(issues, fmt.Sprintf(
				"version.digest: header %q must be relative to the manifest directory", digest.Header))
		}
		if digest.Macro == "" {
			issues = append(issues, "version.digest: macro is required")
		}
	}

	return issues
}
