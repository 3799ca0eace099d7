/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

func bootstrapCmd() *cli.Command {
	return &cli.Command{
		Name:                  "bootstrap",
		EnableShellCompletion: true,
		Usage:                 "Install ArgoCD and ingress-nginx on the cluster",
		Description: `Install the GitOps control plane.

Applies the ArgoCD and ingress-nginx install manifests with server-side
apply, then waits on the control plane deployments in parallel. In dev and
uat a deployment that misses its readiness window is logged and tolerated,
since ArgoCD keeps reconciling after the command returns; production treats
it as a failure (--strict forces that behavior everywhere).

Re-running against an installed cluster is a no-op.

# Examples

Bootstrap dev:
  findeploy bootstrap --env dev

Bootstrap with readiness timeouts treated as failures:
  findeploy bootstrap --env uat --strict`,
		Flags: []cli.Flag{
			envFlag,
			kubeconfigFlag,
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail on any readiness-wait timeout regardless of environment",
			},
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

			strict := cmd.Bool("strict") || env.IsProduction()
			deployer, _, err := newGitopsDeployer(cfg, strict)
			if err != nil {
				return err
			}
			return deployer.Bootstrap(ctx, env)
		},
	}
}
