// Copyright 2026 The Distforge Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/distforge/distforge/lib/dist"
)

// Summary colors use lipgloss ANSI 256-color codes for broad terminal
// compatibility.
var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true)
	formatStyle       = lipgloss.NewStyle().Width(8)

	outcomeStyles = map[dist.Outcome]lipgloss.Style{
		dist.OutcomeUnchanged: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		dist.OutcomeCreated:   lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		dist.OutcomeUpdated:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
	skippedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
	verifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("40"))
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Summary renders the end-of-run report, one line per step.
func Summary(project, version string, results []StepResult) string {
	var b strings.Builder
	b.WriteString(summaryTitleStyle.Render(fmt.Sprintf("%s %s", project, version)))
	b.WriteString("\n")

	for _, result := range results {
		b.WriteString("  ")
		b.WriteString(formatStyle.Render(result.Format.String()))

		if result.Skipped {
			b.WriteString(skippedStyle.Render("skipped: " + result.Reason))
			b.WriteString("\n")
			continue
		}

		if result.Failed {
			b.WriteString(failedStyle.Render("failed"))
			b.WriteString("\n")
			continue
		}

		style, ok := outcomeStyles[result.Outcome]
		if !ok {
			style = lipgloss.NewStyle()
		}
		b.WriteString(style.Render(result.Outcome.String()))
		b.WriteString("  ")
		b.WriteString(result.AssetName)
		if result.Verified {
			b.WriteString("  ")
			b.WriteString(verifiedStyle.Render("verified"))
		}
		b.WriteString("\n")
	}
	return b.String()
}
