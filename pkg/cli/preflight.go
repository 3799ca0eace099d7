/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/openmf/fineract-deploy/pkg/kube"
	"github.com/openmf/fineract-deploy/pkg/preflight"
	"github.com/openmf/fineract-deploy/pkg/runner"
)

func preflightCmd() *cli.Command {
	return &cli.Command{
		Name:                  "preflight",
		EnableShellCompletion: true,
		Usage:                 "Check tools, credentials, and cluster reachability",
		Description: `Check the preconditions for deploying.

Verifies that the required CLIs (terraform, aws, kubeseal) resolve on PATH,
that cloud credentials are valid, and that the Kubernetes API server
answers when a cluster is reachable. Every failure is collected and
reported at once rather than stopping at the first.

# Examples

Check everything before a deploy:
  findeploy preflight --env dev

Check a specific profile's tool set:
  findeploy preflight --env dev --profile secrets`,
		Flags: []cli.Flag{
			envFlag,
			kubeconfigFlag,
			&cli.StringFlag{
				Name:  "profile",
				Value: "deploy",
				Usage: "Tool profile to check (provision, secrets, promote, deploy)",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := envFromCmd(cmd); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Cluster reachability is part of the profile only when a
			// client can be built; before provisioning there is nothing
			// to reach.
			var client kube.Interface
			if c, _, err := kube.BuildClient(cfg.Kubeconfig); err == nil {
				client = c
			}

			checks := preflight.New(runner.New(), client)
			summary := checks.Run(ctx, preflight.RequiredTools(cmd.String("profile"))...)
			if err := writeResult(ctx, cmd, summary); err != nil {
				return err
			}
			return summary.Err()
		},
	}
}
