/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package verify

import (
	"context"
	"log/slog"
	"time"

	"github.com/openmf/fineract-deploy/pkg/defaults"
	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/gitops"
	"github.com/openmf/fineract-deploy/pkg/kube"
	"github.com/openmf/fineract-deploy/pkg/waiter"
)

// Mode selects the verification depth.
type Mode string

const (
	// Quick is a single read-only pass over workloads and network surface.
	Quick Mode = "quick"

	// Full additionally polls ArgoCD application sync and health across a
	// window until everything converges or the window closes.
	Full Mode = "full"
)

// workloadProbe is one expected workload in the environment namespace.
type workloadProbe struct {
	name     string
	severity Severity
}

// expectedDeployments are the workloads a healthy Fineract environment runs.
var expectedDeployments = []workloadProbe{
	{"fineract-server", Critical},
	{"fineract-web-app", Advisory},
	{"keycloak", Advisory},
}

// expectedServices must resolve for in-cluster traffic.
var expectedServices = []workloadProbe{
	{"fineract-server", Critical},
	{"fineract-web-app", Advisory},
}

// ingressName is the environment's external entry point.
const ingressName = "fineract"

// Verifier runs read-only health checks against a deployed environment. It
// never mutates cluster state.
type Verifier struct {
	client     kube.Interface
	deployer   *gitops.Deployer
	syncWindow time.Duration
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithSyncWindow overrides how long Full mode waits for application
// convergence.
func WithSyncWindow(d time.Duration) Option {
	return func(v *Verifier) { v.syncWindow = d }
}

// New creates a Verifier. The deployer is only consulted in Full mode; a nil
// deployer skips application checks.
func New(client kube.Interface, deployer *gitops.Deployer, opts ...Option) *Verifier {
	v := &Verifier{
		client:     client,
		deployer:   deployer,
		syncWindow: defaults.SyncHealthTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify runs the checks for the given mode and aggregates them. Probe
// errors (API unreachable and the like) mark the affected check failed
// rather than aborting the pass: the report should always describe the
// whole surface.
func (v *Verifier) Verify(ctx context.Context, env environment.Environment, mode Mode) (*Report, error) {
	start := time.Now()
	report := &Report{
		Environment: env.String(),
		Mode:        mode,
		Checks:      make([]Check, 0, 8),
	}
	namespace := env.Namespace()

	for _, probe := range expectedDeployments {
		report.Checks = append(report.Checks,
			deploymentCheck(ctx, v.client, namespace, probe))
	}
	for _, probe := range expectedServices {
		report.Checks = append(report.Checks,
			serviceCheck(ctx, v.client, namespace, probe))
	}
	report.Checks = append(report.Checks, ingressCheck(ctx, v.client, namespace))

	if mode == Full {
		report.Checks = append(report.Checks, v.applicationChecks(ctx)...)
	}

	report.aggregate(start)

	slog.Info("verification finished",
		"env", env.String(),
		"mode", string(mode),
		"status", string(report.Summary.Status),
		"passed", report.Summary.Passed,
		"failed", report.Summary.Failed,
		"skipped", report.Summary.Skipped,
		"duration", report.Summary.Duration)
	return report, nil
}

func deploymentCheck(ctx context.Context, client kube.Interface, namespace string, probe workloadProbe) Check {
	check := Check{Name: "deployment." + probe.name, Severity: probe.severity}
	available, err := kube.DeploymentAvailable(ctx, client, namespace, probe.name)
	switch {
	case err != nil:
		check.Status = CheckFailed
		check.Detail = err.Error()
	case available:
		check.Status = CheckPassed
	default:
		check.Status = CheckFailed
		check.Detail = "deployment not available in " + namespace
	}
	return check
}

func serviceCheck(ctx context.Context, client kube.Interface, namespace string, probe workloadProbe) Check {
	check := Check{Name: "service." + probe.name, Severity: probe.severity}
	exists, err := kube.ServiceExists(ctx, client, namespace, probe.name)
	switch {
	case err != nil:
		check.Status = CheckFailed
		check.Detail = err.Error()
	case exists:
		check.Status = CheckPassed
	default:
		check.Status = CheckFailed
		check.Detail = "service missing in " + namespace
	}
	return check
}

func ingressCheck(ctx context.Context, client kube.Interface, namespace string) Check {
	check := Check{Name: "ingress." + ingressName, Severity: Advisory}
	exists, err := kube.IngressExists(ctx, client, namespace, ingressName)
	switch {
	case err != nil:
		check.Status = CheckFailed
		check.Detail = err.Error()
	case exists:
		check.Status = CheckPassed
	default:
		check.Status = CheckFailed
		check.Detail = "ingress missing in " + namespace
	}
	return check
}

// applicationChecks polls until every Application reports Synced/Healthy or
// the window closes, then emits one check per Application from the last
// observation.
func (v *Verifier) applicationChecks(ctx context.Context) []Check {
	if v.deployer == nil {
		return []Check{{
			Name:     "applications.sync",
			Severity: Advisory,
			Status:   CheckSkipped,
			Detail:   "no gitops client configured",
		}}
	}

	var last []gitops.AppState
	outcome, err := waiter.Wait(ctx, waiter.Probe{
		Desc:     "application sync and health",
		Interval: defaults.PollInterval,
		Timeout:  v.syncWindow,
		Check: func(ctx context.Context) (bool, error) {
			states, err := v.deployer.ListAppStates(ctx)
			if err != nil {
				return false, err
			}
			last = states
			for _, s := range states {
				if !s.Synced() {
					return false, nil
				}
			}
			return len(states) > 0, nil
		},
	})

	if outcome == waiter.Failed {
		return []Check{{
			Name:     "applications.sync",
			Severity: Critical,
			Status:   CheckFailed,
			Detail:   err.Error(),
		}}
	}
	if len(last) == 0 {
		return []Check{{
			Name:     "applications.sync",
			Severity: Critical,
			Status:   CheckFailed,
			Detail:   "no applications registered",
		}}
	}

	checks := make([]Check, 0, len(last))
	for _, state := range last {
		check := Check{Name: "application." + state.Name, Severity: Critical}
		if state.Synced() {
			check.Status = CheckPassed
		} else {
			check.Status = CheckFailed
			check.Detail = "sync=" + state.Sync + " health=" + state.Health
		}
		checks = append(checks, check)
	}
	return checks
}
