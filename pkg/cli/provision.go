/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/openmf/fineract-deploy/pkg/preflight"
	"github.com/openmf/fineract-deploy/pkg/runner"
	"github.com/openmf/fineract-deploy/pkg/terraform"
)

func provisionCmd() *cli.Command {
	return &cli.Command{
		Name:                  "provision",
		EnableShellCompletion: true,
		Usage:                 "Provision cloud infrastructure with Terraform",
		Description: `Provision the environment's cloud infrastructure.

Runs the Terraform chain init -> validate -> plan -> apply against the
environment's tfvars file. The plan is written to a local plan file and shown
before apply; apply only proceeds after an explicit "yes" (or --auto-approve).
The plan file never survives the run.

On success the Terraform outputs (cluster name, endpoints, bucket names,
role ARNs) are printed; sensitive outputs are withheld.

# Examples

Provision dev interactively:
  findeploy provision --env dev

Provision in CI:
  findeploy provision --env uat --auto-approve

Tear the environment down (same confirmation gate):
  findeploy provision --env dev --destroy`,
		Flags: []cli.Flag{
			envFlag,
			&cli.BoolFlag{
				Name:  "auto-approve",
				Usage: "Skip the interactive apply confirmation",
			},
			&cli.BoolFlag{
				Name:  "destroy",
				Usage: "Destroy the environment's infrastructure instead of provisioning",
			},
			&cli.StringFlag{
				Name:    "terraform-dir",
				Sources: cli.EnvVars("FINDEPLOY_TERRAFORM_DIR"),
				Usage:   "Root of the Terraform configuration",
			},
			outputFlag,
			formatFlag,
			regionFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, err := envFromCmd(cmd)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if v := cmd.String("terraform-dir"); v != "" {
				cfg.TerraformDir = v
			}

			r := runner.New()
			checks := preflight.New(r, nil)
			if err := checks.Run(ctx, preflight.RequiredTools("provision")...).Err(); err != nil {
				return err
			}

			confirm := terraform.StdinConfirm(os.Stdin, os.Stderr)
			if cmd.Bool("auto-approve") {
				confirm = terraform.AutoApprove
			} else if cfg.NonInteractive {
				// Non-interactive without auto-approve resolves the
				// prompt to its default answer: deny.
				confirm = func(string) bool { return false }
			}

			p := terraform.New(r, cfg.TerraformDir,
				terraform.WithConfirm(confirm),
				terraform.WithStream(os.Stderr))

			if cmd.Bool("destroy") {
				return p.Destroy(ctx, env)
			}

			outputs, err := p.Provision(ctx, env)
			if err != nil {
				return err
			}

			slog.Info("provisioning complete", "env", env.String(), "outputs", len(outputs))
			return writeResult(ctx, cmd, publicOutputs(outputs))
		},
	}
}

// publicOutputs filters sensitive Terraform outputs from display.
func publicOutputs(outputs terraform.Outputs) map[string]any {
	public := make(map[string]any, len(outputs))
	for key, out := range outputs {
		if out.Sensitive {
			continue
		}
		public[key] = out.Value
	}
	return public
}
