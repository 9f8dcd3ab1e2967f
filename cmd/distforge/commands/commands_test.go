// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"strings"
	"testing"
)

func TestRootTree(t *testing.T) {
	root := Root()

	want := map[string]bool{"release": false, "compare": false, "version": false, "doctor": false}
	for _, sub := range root.Subcommands {
		if _, known := want[sub.Name]; known {
			want[sub.Name] = true
		}
		if sub.Summary == "" {
			t.Errorf("subcommand %q has no summary", sub.Name)
		}
	}
	for name, present := range want {
		if !present {
			t.Errorf("root tree missing %q", name)
		}
	}
}

func TestRootHelp(t *testing.T) {
	var b strings.Builder
	Root().PrintHelp(&b)
	help := b.String()
	for _, want := range []string{"release", "compare", "version", "doctor"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q", want)
		}
	}
}
