// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package versionfile

import (
	"fmt"
	"os"
	"regexp"
)

// SourceKind selects how a version is embedded in a file.
type SourceKind int

const (
	// SourcePlain: the file holds the bare triplet and nothing else
	// (a VERSION file).
	SourcePlain SourceKind = iota

	// SourceCDefine: the file holds #define <prefix>MAJOR / MINOR /
	// BUILD macros with quoted numeric values.
	SourceCDefine

	// SourceCMake: the file holds set(<prefix>VERSION_MAJOR n) and
	// friends.
	SourceCMake
)

// String returns the kind name as used in the manifest.
func (k SourceKind) String() string {
	switch k {
	case SourcePlain:
		return "plain"
	case SourceCDefine:
		return "c-define"
	case SourceCMake:
		return "cmake"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseSourceKind parses a manifest kind name.
func ParseSourceKind(name string) (SourceKind, error) {
	switch name {
	case "plain":
		return SourcePlain, nil
	case "c-define":
		return SourceCDefine, nil
	case "cmake":
		return SourceCMake, nil
	default:
		return 0, fmt.Errorf("unknown version source kind %q", name)
	}
}

// Source is one file that embeds the project version.
type Source struct {
	// Path is the file location.
	Path string

	// Kind selects the embedding.
	Kind SourceKind

	// Prefix is prepended to the macro or variable names ("TA_" gives
	// #define TA_MAJOR and set(TA_VERSION_MAJOR n)). Unused for
	// plain sources.
	Prefix string
}

// componentNames returns the per-component key names for this source,
// in major, minor, patch order.
func (s Source) componentNames() [3]string {
	if s.Kind == SourceCMake {
		return [3]string{
			s.Prefix + "VERSION_MAJOR",
			s.Prefix + "VERSION_MINOR",
			s.Prefix + "VERSION_PATCH",
		}
	}
	return [3]string{s.Prefix + "MAJOR", s.Prefix + "MINOR", s.Prefix + "BUILD"}
}

// componentPattern returns a regexp matching the embedding of one
// component, with the numeric value as the single capture group.
func (s Source) componentPattern(name string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(name)
	if s.Kind == SourceCMake {
		return regexp.MustCompile(`(?m)set\(\s*` + quoted + `\s+(\d+)\s*\)`)
	}
	return regexp.MustCompile(`(?m)^#define\s+` + quoted + `\s+"?(\d+)"?`)
}

// Read extracts the version from the source file. A missing component
// key is fatal: a source that stops embedding the version silently
// would otherwise pin every sync at its stale value.
func (s Source) Read() (Version, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Version{}, fmt.Errorf("reading version source: %w", err)
	}
	content := string(data)

	if s.Kind == SourcePlain {
		version, err := Parse(content)
		if err != nil {
			return Version{}, fmt.Errorf("%s: %w", s.Path, err)
		}
		return version, nil
	}

	var components [3]int
	for i, name := range s.componentNames() {
		match := s.componentPattern(name).FindStringSubmatch(content)
		if match == nil {
			return Version{}, fmt.Errorf("%s: no %s found", s.Path, name)
		}
		fmt.Sscanf(match[1], "%d", &components[i])
	}
	return Version{Major: components[0], Minor: components[1], Patch: components[2]}, nil
}

// Write rewrites the source file in place to embed version, leaving
// all surrounding text untouched.
func (s Source) Write(version Version) error {
	if s.Kind == SourcePlain {
		return os.WriteFile(s.Path, []byte(version.String()+"\n"), 0o644)
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return fmt.Errorf("reading version source: %w", err)
	}
	content := string(data)

	values := [3]int{version.Major, version.Minor, version.Patch}
	for i, name := range s.componentNames() {
		pattern := s.componentPattern(name)
		match := pattern.FindStringSubmatchIndex(content)
		if match == nil {
			return fmt.Errorf("%s: no %s found", s.Path, name)
		}
		// Replace only the captured number so quoting and spacing
		// survive.
		content = content[:match[2]] + fmt.Sprintf("%d", values[i]) + content[match[3]:]
	}
	return os.WriteFile(s.Path, []byte(content), 0o644)
}

// SyncResult reports what Sync decided.
type SyncResult struct {
	// Version is the highest version found across all sources.
	Version Version

	// Updated lists the paths that were rewritten.
	Updated []string
}

// Sync reads every source, takes the highest version as the truth,
// and rewrites the sources that disagree.
func Sync(sources []Source) (*SyncResult, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no version sources declared")
	}

	versions := make([]Version, len(sources))
	highest := Version{}
	for i, source := range sources {
		version, err := source.Read()
		if err != nil {
			return nil, err
		}
		versions[i] = version
		if version.Compare(highest) > 0 {
			highest = version
		}
	}

	result := &SyncResult{Version: highest}
	for i, source := range sources {
		if versions[i].Compare(highest) == 0 {
			continue
		}
		if err := source.Write(highest); err != nil {
			return nil, err
		}
		result.Updated = append(result.Updated, source.Path)
	}
	return result, nil
}
