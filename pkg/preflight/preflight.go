/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package preflight

import (
	"context"
	"log/slog"
	"strings"

	"github.com/openmf/fineract-deploy/pkg/errors"
	"github.com/openmf/fineract-deploy/pkg/kube"
	"github.com/openmf/fineract-deploy/pkg/runner"
)

// Check is the outcome of a single precondition probe.
type Check struct {
	Name   string `json:"name" yaml:"name"`
	OK     bool   `json:"ok" yaml:"ok"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary aggregates preflight checks.
type Summary struct {
	Checks []Check `json:"checks" yaml:"checks"`
}

func (s *Summary) add(ok bool, name, detail string, err error) {
	c := Check{Name: name, OK: ok, Detail: detail}
	if err != nil {
		c.Error = err.Error()
	}
	s.Checks = append(s.Checks, c)
}

// Failed returns the names of all failed checks.
func (s *Summary) Failed() []string {
	var failed []string
	for _, c := range s.Checks {
		if !c.OK {
			failed = append(failed, c.Name)
		}
	}
	return failed
}

// Err returns a single PRECONDITION_FAILED error enumerating every failed
// check, or nil when all passed. All failures are reported at once rather
// than stopping at the first.
func (s *Summary) Err() error {
	failed := s.Failed()
	if len(failed) == 0 {
		return nil
	}
	return errors.NewWithContext(errors.ErrCodePrecondition,
		"preflight failed: "+strings.Join(failed, ", "),
		map[string]any{"failed": failed})
}

// Checker runs precondition checks for a command profile.
type Checker struct {
	runner runner.Runner
	client kube.Interface
}

// New creates a Checker. client may be nil when cluster reachability is not
// part of the profile (e.g. before provisioning).
func New(r runner.Runner, client kube.Interface) *Checker {
	return &Checker{runner: r, client: client}
}

// Tools verifies every named CLI resolves on PATH, collecting all missing
// tools rather than stopping at the first.
func (c *Checker) Tools(names ...string) []Check {
	checks := make([]Check, 0, len(names))
	for _, name := range names {
		if err := c.runner.LookPath(name); err != nil {
			checks = append(checks, Check{Name: name, OK: false, Detail: "not found on PATH", Error: err.Error()})
			continue
		}
		checks = append(checks, Check{Name: name, OK: true, Detail: "found"})
	}
	return checks
}

// CloudIdentity verifies cloud credentials by resolving the caller identity.
func (c *Checker) CloudIdentity(ctx context.Context) Check {
	res, err := c.runner.Run(ctx, runner.Command{
		Name: "aws",
		Args: []string{"sts", "get-caller-identity", "--query", "Arn", "--output", "text"},
	})
	if err != nil {
		return Check{Name: "aws-identity", OK: false, Detail: "credentials invalid or expired", Error: err.Error()}
	}
	return Check{Name: "aws-identity", OK: true, Detail: strings.TrimSpace(res.Stdout)}
}

// ClusterReachable verifies the Kubernetes API server answers.
func (c *Checker) ClusterReachable(ctx context.Context) Check {
	if c.client == nil {
		return Check{Name: "cluster", OK: false, Detail: "no cluster client configured"}
	}
	ok, err := kube.APIServerHealthy(ctx, c.client)
	if err != nil || !ok {
		return Check{Name: "cluster", OK: false, Detail: "api server unreachable", Error: errString(err)}
	}
	return Check{Name: "cluster", OK: true, Detail: "api server reachable"}
}

// Run executes the full profile: tool availability, cloud identity, and
// (when a client is present) cluster reachability.
func (c *Checker) Run(ctx context.Context, tools ...string) *Summary {
	s := &Summary{}
	s.Checks = append(s.Checks, c.Tools(tools...)...)
	s.Checks = append(s.Checks, c.CloudIdentity(ctx))
	if c.client != nil {
		s.Checks = append(s.Checks, c.ClusterReachable(ctx))
	}

	for _, check := range s.Checks {
		if check.OK {
			slog.Debug("preflight passed", "check", check.Name, "detail", check.Detail)
		} else {
			slog.Error("preflight failed", "check", check.Name, "detail", check.Detail, "error", check.Error)
		}
	}
	return s
}

// RequiredTools returns the CLI set a command profile depends on.
//
// kubeseal is required by the secrets and deploy profiles even though
// findeploy never invokes it: when validate reports incompatible secrets,
// the operator's only remedy is re-sealing the GitOps manifests with
// kubeseal, and that discovery is cheapest before any cluster work starts.
func RequiredTools(profile string) []string {
	switch profile {
	case "provision":
		return []string{"terraform", "aws"}
	case "secrets":
		return []string{"aws", "kubeseal"}
	case "promote":
		return []string{"gh"}
	case "deploy":
		return []string{"terraform", "aws", "kubeseal"}
	default:
		return nil
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
