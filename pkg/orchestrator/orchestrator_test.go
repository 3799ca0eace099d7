/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package orchestrator

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmf/fineract-deploy/pkg/errors"
)

func okStep(name string, ran *[]string) Step {
	return Step{
		Name:   name,
		Policy: Fatal,
		Run: func(context.Context) error {
			*ran = append(*ran, name)
			return nil
		},
	}
}

func failingStep(name string, policy Policy) Step {
	return Step{
		Name:    name,
		Command: "findeploy " + name + " --env dev",
		Policy:  policy,
		Run: func(context.Context) error {
			return errors.New(errors.ErrCodeInternal, name+" exploded")
		},
	}
}

func TestExecuteAllSucceed(t *testing.T) {
	t.Parallel()

	var ran []string
	o := New("", okStep("provision", &ran), okStep("configure", &ran), okStep("bootstrap", &ran))

	report, err := o.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"provision", "configure", "bootstrap"}, ran)
	assert.False(t, report.Failed())
	for _, s := range report.Steps {
		assert.Equal(t, StepSucceeded, s.Status)
	}
}

func TestExecuteFatalAbortsWithPosition(t *testing.T) {
	t.Parallel()

	var ran []string
	o := New("",
		okStep("provision", &ran),
		failingStep("configure", Fatal),
		okStep("bootstrap", &ran),
	)

	report, err := o.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed at step 2/3")
	assert.Contains(t, err.Error(), "configure")

	// Nothing past the failure ran; the report still covers every step.
	assert.Equal(t, []string{"provision"}, ran)
	require.Len(t, report.Steps, 3)
	assert.Equal(t, StepSucceeded, report.Steps[0].Status)
	assert.Equal(t, StepFailed, report.Steps[1].Status)
	assert.Equal(t, StepPending, report.Steps[2].Status)
	assert.True(t, report.Failed())
}

func TestExecuteWarnAndContinue(t *testing.T) {
	t.Parallel()

	var ran []string
	o := New("",
		failingStep("verify", WarnAndContinue),
		okStep("jobs", &ran),
	)

	report, err := o.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"jobs"}, ran)
	assert.Equal(t, StepWarned, report.Steps[0].Status)
	require.Len(t, report.Warnings(), 1)
	assert.False(t, report.Failed())
}

func TestExecuteBestEffort(t *testing.T) {
	t.Parallel()

	var ran []string
	o := New("",
		failingStep("hostname", BestEffort),
		okStep("verify", &ran),
	)

	report, err := o.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"verify"}, ran)
	assert.Equal(t, StepWarned, report.Steps[0].Status)
}

func TestExecuteWritesRunLog(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()
	var ran []string
	o := New(logDir, okStep("provision", &ran), failingStep("configure", Fatal))

	_, err := o.Execute(context.Background())
	require.Error(t, err)

	matches, err := filepath.Glob(filepath.Join(logDir, "deploy-*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Contains(t, matches[0], o.RunID()[:8])

	raw, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "[1/2] provision: starting")
	assert.Contains(t, content, "[2/2] configure: FAILED")
}

func TestWriteSummary(t *testing.T) {
	color.NoColor = true

	report := &RunReport{
		RunID: "run-id",
		Steps: []StepResult{
			{Name: "provision", Status: StepSucceeded},
			{Name: "configure", Command: "findeploy configure --env dev", Status: StepFailed, Message: "configure exploded"},
			{Name: "bootstrap", Command: "findeploy bootstrap --env dev", Status: StepPending},
		},
	}

	var buf bytes.Buffer
	WriteSummary(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "✓ Provision")
	assert.Contains(t, out, "✗ Configure: configure exploded")
	assert.Contains(t, out, "Bootstrap (not run)")
	assert.Contains(t, out, "Next steps:")

	// Resume commands appear in pipeline order.
	failIdx := strings.Index(out, "findeploy configure --env dev")
	pendIdx := strings.Index(out, "findeploy bootstrap --env dev")
	assert.Greater(t, pendIdx, failIdx)
	assert.Positive(t, failIdx)
}

func TestWriteSummaryCleanRun(t *testing.T) {
	color.NoColor = true

	report := &RunReport{
		RunID: "run-id",
		Steps: []StepResult{{Name: "verify", Status: StepSucceeded}},
	}

	var buf bytes.Buffer
	WriteSummary(&buf, report)
	assert.Contains(t, buf.String(), "All steps completed.")
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "fatal", Fatal.String())
	assert.Equal(t, "warn-and-continue", WarnAndContinue.String())
	assert.Equal(t, "best-effort", BestEffort.String())
}
