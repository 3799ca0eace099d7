/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package terraform

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/openmf/fineract-deploy/pkg/defaults"
	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/errors"
	"github.com/openmf/fineract-deploy/pkg/runner"
)

// planFileName is the persisted plan artifact. It is removed after apply so
// a stale plan can never be reused.
const planFileName = "tfplan"

// Provisioner drives terraform through its fixed stage order:
// init -> validate -> plan -> confirm -> apply -> output.
type Provisioner struct {
	runner  runner.Runner
	dir     string
	confirm ConfirmFunc
	stream  io.Writer
}

// ConfirmFunc asks the operator to approve a destructive action. It must
// default to deny on any input other than an explicit yes.
type ConfirmFunc func(prompt string) bool

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithConfirm overrides the confirmation gate. Used for auto-approve mode
// and for tests.
func WithConfirm(fn ConfirmFunc) Option {
	return func(p *Provisioner) { p.confirm = fn }
}

// WithStream mirrors terraform output to the given writer as it runs.
func WithStream(w io.Writer) Option {
	return func(p *Provisioner) { p.stream = w }
}

// New creates a Provisioner rooted at the given terraform directory.
func New(r runner.Runner, dir string, opts ...Option) *Provisioner {
	p := &Provisioner{
		runner:  r,
		dir:     dir,
		confirm: StdinConfirm(os.Stdin, os.Stdout),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StdinConfirm returns a ConfirmFunc that prompts on w and reads the answer
// from r. Only an explicit "yes" approves; everything else, including EOF,
// denies.
func StdinConfirm(r io.Reader, w io.Writer) ConfirmFunc {
	reader := bufio.NewReader(r)
	return func(prompt string) bool {
		fmt.Fprintf(w, "%s [yes/No]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(line), "yes")
	}
}

// AutoApprove is a ConfirmFunc that approves everything. Non-interactive
// pipelines opt into it explicitly.
func AutoApprove(string) bool { return true }

// Provision runs the full stage chain for the environment and returns the
// parsed outputs. Any stage failure aborts before the next stage runs.
// Apply only proceeds after confirmation; a denied confirmation returns an
// INVALID_REQUEST error and leaves the infrastructure untouched.
func (p *Provisioner) Provision(ctx context.Context, env environment.Environment) (Outputs, error) {
	if err := p.Init(ctx); err != nil {
		return nil, err
	}
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}
	if err := p.Plan(ctx, env); err != nil {
		return nil, err
	}

	if !p.confirm(fmt.Sprintf("Apply the plan above to %s? This creates real cloud resources", env)) {
		p.removePlan()
		return nil, errors.New(errors.ErrCodeInvalidRequest, "apply not confirmed, aborting")
	}

	if err := p.Apply(ctx); err != nil {
		return nil, err
	}
	return p.Outputs(ctx)
}

// Init runs terraform init.
func (p *Provisioner) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.TerraformInitTimeout)
	defer cancel()

	slog.Info("terraform init", "dir", p.dir)
	return p.runStage(ctx, "init", "-input=false")
}

// Validate runs terraform validate.
func (p *Provisioner) Validate(ctx context.Context) error {
	slog.Info("terraform validate", "dir", p.dir)
	return p.runStage(ctx, "validate")
}

// Plan runs terraform plan against the environment tfvars, persisting the
// plan artifact for the subsequent apply.
func (p *Provisioner) Plan(ctx context.Context, env environment.Environment) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.TerraformPlanTimeout)
	defer cancel()

	slog.Info("terraform plan", "dir", p.dir, "tfvars", env.TFVarsFile())
	return p.runStage(ctx, "plan",
		"-input=false",
		"-var-file="+env.TFVarsFile(),
		"-out="+planFileName)
}

// Apply applies the previously persisted plan, then deletes the plan file
// regardless of result.
func (p *Provisioner) Apply(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.TerraformApplyTimeout)
	defer cancel()

	slog.Info("terraform apply", "dir", p.dir)
	err := p.runStage(ctx, "apply", "-input=false", planFileName)
	p.removePlan()
	return err
}

// Destroy tears down the environment's infrastructure behind the same
// confirmation gate as apply.
func (p *Provisioner) Destroy(ctx context.Context, env environment.Environment) error {
	if !p.confirm(fmt.Sprintf("Destroy ALL infrastructure for %s? This cannot be undone", env)) {
		return errors.New(errors.ErrCodeInvalidRequest, "destroy not confirmed, aborting")
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.TerraformApplyTimeout)
	defer cancel()

	slog.Warn("terraform destroy", "dir", p.dir, "env", env.String())
	return p.runStage(ctx, "destroy",
		"-input=false",
		"-auto-approve",
		"-var-file="+env.TFVarsFile())
}

// Outputs reads and parses terraform outputs. They are the sole channel by
// which downstream steps learn resource identifiers.
func (p *Provisioner) Outputs(ctx context.Context) (Outputs, error) {
	res, err := p.runner.Run(ctx, runner.Command{
		Name: "terraform",
		Args: []string{"output", "-json"},
		Dir:  p.dir,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "terraform output failed", err)
	}
	return ParseOutputs([]byte(res.Stdout))
}

func (p *Provisioner) runStage(ctx context.Context, stage string, args ...string) error {
	_, err := p.runner.Run(ctx, runner.Command{
		Name:   "terraform",
		Args:   append([]string{stage}, args...),
		Dir:    p.dir,
		Stream: p.stream,
	})
	if err != nil {
		return errors.Wrap(errors.CodeOf(err), "terraform "+stage+" failed", err)
	}
	return nil
}

func (p *Provisioner) removePlan() {
	path := filepath.Join(p.dir, planFileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove plan file", "path", path, "error", err)
	}
}
