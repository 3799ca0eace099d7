/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/openmf/fineract-deploy/pkg/errors"
)

// Policy decides what a step failure does to the rest of the pipeline.
type Policy int

const (
	// Fatal aborts the pipeline at the failing step.
	Fatal Policy = iota

	// WarnAndContinue records a warning and moves on. The run as a whole
	// still reports the warning in its summary.
	WarnAndContinue

	// BestEffort tolerates failure silently apart from debug logging. For
	// steps whose outcome the platform converges on anyway.
	BestEffort
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case Fatal:
		return "fatal"
	case WarnAndContinue:
		return "warn-and-continue"
	case BestEffort:
		return "best-effort"
	default:
		return "unknown"
	}
}

// Step is one unit of the deployment pipeline.
type Step struct {
	// Name identifies the step in logs and the summary.
	Name string

	// Command is the standalone CLI invocation re-running just this step,
	// surfaced in the summary when the step fails or never ran.
	Command string

	// Policy decides how a failure is treated.
	Policy Policy

	// Run does the work.
	Run func(ctx context.Context) error
}

// StepStatus is a step's terminal state within a run.
type StepStatus string

const (
	// StepSucceeded means the step completed without error.
	StepSucceeded StepStatus = "succeeded"

	// StepWarned means the step failed under a non-fatal policy.
	StepWarned StepStatus = "warned"

	// StepFailed means the step failed fatally.
	StepFailed StepStatus = "failed"

	// StepPending means the pipeline aborted before reaching the step.
	StepPending StepStatus = "pending"
)

// StepResult records one step's outcome.
type StepResult struct {
	Name     string        `json:"name" yaml:"name"`
	Command  string        `json:"command,omitempty" yaml:"command,omitempty"`
	Status   StepStatus    `json:"status" yaml:"status"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Message  string        `json:"message,omitempty" yaml:"message,omitempty"`
}

// RunReport is the complete pipeline outcome.
type RunReport struct {
	RunID    string        `json:"runId" yaml:"runId"`
	Started  time.Time     `json:"started" yaml:"started"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Steps    []StepResult  `json:"steps" yaml:"steps"`
}

// Failed reports whether any step failed fatally.
func (r *RunReport) Failed() bool {
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			return true
		}
	}
	return false
}

// Warnings returns the results of steps that failed non-fatally.
func (r *RunReport) Warnings() []StepResult {
	var warned []StepResult
	for _, s := range r.Steps {
		if s.Status == StepWarned {
			warned = append(warned, s)
		}
	}
	return warned
}

// Orchestrator runs a pipeline of steps in order, writing progress to slog
// and a per-run log file. A single operator at a time is assumed; there is
// no cross-process locking.
type Orchestrator struct {
	steps  []Step
	runID  string
	logDir string
	logOut *os.File
}

// New creates an Orchestrator. logDir receives a timestamped per-run log
// file; empty disables file logging.
func New(logDir string, steps ...Step) *Orchestrator {
	return &Orchestrator{
		steps:  steps,
		runID:  uuid.NewString(),
		logDir: logDir,
	}
}

// RunID returns this run's identifier.
func (o *Orchestrator) RunID() string { return o.runID }

// Execute runs every step in order. A Fatal step failure aborts the run;
// the returned report still carries every step, with unreached steps marked
// pending. The error names the failing position so an operator knows where
// to resume.
func (o *Orchestrator) Execute(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{
		RunID:   o.runID,
		Started: start,
		Steps:   make([]StepResult, 0, len(o.steps)),
	}

	if err := o.openRunLog(start); err != nil {
		return nil, err
	}
	defer o.closeRunLog()

	total := len(o.steps)
	var fatal error

	for i, step := range o.steps {
		if fatal != nil {
			report.Steps = append(report.Steps, StepResult{
				Name:    step.Name,
				Command: step.Command,
				Status:  StepPending,
			})
			continue
		}

		position := fmt.Sprintf("%d/%d", i+1, total)
		slog.Info("step starting", "step", step.Name, "position", position, "run", o.runID)
		o.logf("[%s] %s: starting", position, step.Name)

		stepStart := time.Now()
		err := step.Run(ctx)
		result := StepResult{
			Name:     step.Name,
			Command:  step.Command,
			Duration: time.Since(stepStart),
			Status:   StepSucceeded,
		}

		switch {
		case err == nil:
			o.logf("[%s] %s: succeeded in %v", position, step.Name, result.Duration)

		case step.Policy == Fatal:
			result.Status = StepFailed
			result.Message = err.Error()
			o.logf("[%s] %s: FAILED: %v", position, step.Name, err)
			fatal = errors.Wrap(errors.CodeOf(err),
				fmt.Sprintf("deployment failed at step %s (%s)", position, step.Name), err)

		case step.Policy == WarnAndContinue:
			result.Status = StepWarned
			result.Message = err.Error()
			slog.Warn("step failed, continuing", "step", step.Name, "position", position, "error", err)
			o.logf("[%s] %s: warning: %v", position, step.Name, err)

		default:
			result.Status = StepWarned
			result.Message = err.Error()
			slog.Debug("best-effort step failed", "step", step.Name, "error", err)
			o.logf("[%s] %s: best-effort failure: %v", position, step.Name, err)
		}

		report.Steps = append(report.Steps, result)
	}

	report.Duration = time.Since(start)
	o.logf("run %s finished in %v", o.runID, report.Duration)
	return report, fatal
}

func (o *Orchestrator) openRunLog(start time.Time) error {
	if o.logDir == "" {
		return nil
	}
	if err := os.MkdirAll(o.logDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create run log directory", err)
	}
	name := fmt.Sprintf("deploy-%s-%s.log", start.Format("20060102-150405"), o.runID[:8])
	f, err := os.Create(filepath.Join(o.logDir, name))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create run log", err)
	}
	o.logOut = f
	return nil
}

func (o *Orchestrator) closeRunLog() {
	if o.logOut != nil {
		_ = o.logOut.Close()
		o.logOut = nil
	}
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.logOut == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	fmt.Fprintf(o.logOut, "%s %s\n", time.Now().UTC().Format(time.RFC3339), line)
}
