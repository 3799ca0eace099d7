/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package orchestrator

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.English)

// WriteSummary renders the run outcome as a human-readable block: per-step
// status, collected warnings, and the commands to run next when the
// pipeline did not finish cleanly.
func WriteSummary(w io.Writer, report *RunReport) {
	green := color.New(color.FgGreen).FprintfFunc()
	yellow := color.New(color.FgYellow).FprintfFunc()
	red := color.New(color.FgRed).FprintfFunc()
	bold := color.New(color.Bold).FprintfFunc()

	bold(w, "\nDeployment run %s\n", report.RunID)
	fmt.Fprintf(w, "Duration: %v\n\n", report.Duration.Round(1e6))

	for _, step := range report.Steps {
		title := titler.String(step.Name)
		switch step.Status {
		case StepSucceeded:
			green(w, "  ✓ %s (%v)\n", title, step.Duration.Round(1e6))
		case StepWarned:
			yellow(w, "  ! %s: %s\n", title, step.Message)
		case StepFailed:
			red(w, "  ✗ %s: %s\n", title, step.Message)
		case StepPending:
			fmt.Fprintf(w, "  - %s (not run)\n", title)
		}
	}

	if warnings := report.Warnings(); len(warnings) > 0 {
		yellow(w, "\n%d warning(s); inspect before promoting further.\n", len(warnings))
	}

	next := nextCommands(report)
	if len(next) > 0 {
		bold(w, "\nNext steps:\n")
		for _, cmd := range next {
			fmt.Fprintf(w, "  %s\n", cmd)
		}
	} else if !report.Failed() {
		green(w, "\nAll steps completed.\n")
	}
}

// nextCommands lists the standalone invocations for the failed step and
// everything after it, skipping steps that declare no command.
func nextCommands(report *RunReport) []string {
	var cmds []string
	for _, step := range report.Steps {
		if step.Status != StepFailed && step.Status != StepPending {
			continue
		}
		if step.Command != "" {
			cmds = append(cmds, step.Command)
		}
	}
	return cmds
}
