/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package waiter

import (
	"context"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/openmf/fineract-deploy/pkg/defaults"
	"github.com/openmf/fineract-deploy/pkg/errors"
)

// Outcome is the terminal state of a bounded wait.
type Outcome string

const (
	// Ready means the condition reported true before the timeout.
	Ready Outcome = "ready"
	// TimedOut means the timeout elapsed with the condition still false.
	// It is distinct from a condition error so callers can apply their
	// own policy (abort vs. continue best-effort).
	TimedOut Outcome = "timed-out"
	// Failed means the condition itself returned a terminal error.
	Failed Outcome = "failed"
)

// Condition reports whether the awaited state has been reached. Returning a
// non-nil error terminates the wait immediately; returning (false, nil)
// schedules another poll.
type Condition func(ctx context.Context) (bool, error)

// Probe describes a single bounded wait.
type Probe struct {
	// Desc names the awaited condition for logging.
	Desc string
	// Interval between polls. Zero means defaults.PollInterval.
	Interval time.Duration
	// Timeout caps total wall-clock time. Zero means defaults.DeploymentReadyTimeout.
	Timeout time.Duration
	// Check is the condition to poll.
	Check Condition
}

// Wait polls the probe's condition at fixed cadence until it reports true,
// fails, or the timeout elapses. The first poll happens immediately; no poll
// is performed after success; total time never exceeds the timeout by more
// than one interval.
func Wait(ctx context.Context, p Probe) (Outcome, error) {
	if p.Check == nil {
		return Failed, errors.New(errors.ErrCodeInvalidRequest, "probe requires a condition")
	}
	if p.Interval <= 0 {
		p.Interval = defaults.PollInterval
	}
	if p.Timeout <= 0 {
		p.Timeout = defaults.DeploymentReadyTimeout
	}

	start := time.Now()
	slog.Debug("waiting", "for", p.Desc, "interval", p.Interval, "timeout", p.Timeout)

	err := wait.PollUntilContextTimeout(ctx, p.Interval, p.Timeout, true,
		func(ctx context.Context) (bool, error) {
			return p.Check(ctx)
		})

	elapsed := time.Since(start)

	switch {
	case err == nil:
		slog.Debug("condition met", "for", p.Desc, "elapsed", elapsed)
		return Ready, nil
	case wait.Interrupted(err):
		slog.Debug("wait timed out", "for", p.Desc, "elapsed", elapsed)
		return TimedOut, errors.NewWithContext(errors.ErrCodeTimeout,
			"timed out waiting for "+p.Desc,
			map[string]any{"timeout": p.Timeout.String(), "elapsed": elapsed.String()})
	default:
		return Failed, err
	}
}

// WaitReady is a convenience wrapper that treats both timeout and condition
// failure as errors. Use Wait directly when timeout needs distinct handling.
func WaitReady(ctx context.Context, p Probe) error {
	_, err := Wait(ctx, p)
	return err
}
