/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package verify

import (
	"time"
)

// HealthStatus is the aggregate verification outcome.
type HealthStatus string

const (
	// Healthy indicates every check passed.
	Healthy HealthStatus = "healthy"

	// Degraded indicates only advisory checks failed or were skipped.
	Degraded HealthStatus = "degraded"

	// Failed indicates at least one critical check failed.
	Failed HealthStatus = "failed"
)

// Severity weighs a check in the aggregate outcome.
type Severity string

const (
	// Critical checks gate the deployment; a failure fails the whole run.
	Critical Severity = "critical"

	// Advisory checks degrade the outcome without failing it.
	Advisory Severity = "advisory"
)

// CheckStatus is the outcome of a single check.
type CheckStatus string

const (
	// CheckPassed indicates the check was satisfied.
	CheckPassed CheckStatus = "passed"

	// CheckFailed indicates the check was not satisfied.
	CheckFailed CheckStatus = "failed"

	// CheckSkipped indicates the check couldn't be evaluated.
	CheckSkipped CheckStatus = "skipped"
)

// Check is the result of one verification probe.
type Check struct {
	// Name identifies the probe (e.g. "deployment.fineract-server").
	Name string `json:"name" yaml:"name"`

	// Severity weighs the check in the aggregate outcome.
	Severity Severity `json:"severity" yaml:"severity"`

	// Status is the outcome of this check.
	Status CheckStatus `json:"status" yaml:"status"`

	// Detail provides context, especially for failures.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Summary contains aggregate verification statistics.
type Summary struct {
	// Passed is the count of satisfied checks.
	Passed int `json:"passed" yaml:"passed"`

	// Failed is the count of unsatisfied checks.
	Failed int `json:"failed" yaml:"failed"`

	// Skipped is the count of checks that couldn't be evaluated.
	Skipped int `json:"skipped" yaml:"skipped"`

	// Total is the total number of checks run.
	Total int `json:"total" yaml:"total"`

	// Status is the aggregate outcome.
	Status HealthStatus `json:"status" yaml:"status"`

	// Duration is how long verification took.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report is the complete verification outcome.
type Report struct {
	// Environment the verification ran against.
	Environment string `json:"environment" yaml:"environment"`

	// Mode is quick or full.
	Mode Mode `json:"mode" yaml:"mode"`

	// Summary contains aggregate statistics.
	Summary Summary `json:"summary" yaml:"summary"`

	// Checks contains per-probe details.
	Checks []Check `json:"checks" yaml:"checks"`
}

// aggregate folds the checks into the summary. Critical failures dominate;
// advisory failures and skips degrade.
func (r *Report) aggregate(start time.Time) {
	criticalFailed := false
	for _, c := range r.Checks {
		switch c.Status {
		case CheckPassed:
			r.Summary.Passed++
		case CheckFailed:
			r.Summary.Failed++
			if c.Severity == Critical {
				criticalFailed = true
			}
		case CheckSkipped:
			r.Summary.Skipped++
		}
	}
	r.Summary.Total = len(r.Checks)
	r.Summary.Duration = time.Since(start)

	switch {
	case criticalFailed:
		r.Summary.Status = Failed
	case r.Summary.Failed > 0 || r.Summary.Skipped > 0:
		r.Summary.Status = Degraded
	default:
		r.Summary.Status = Healthy
	}
}
