/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/openmf/fineract-deploy/pkg/gitops"
	"github.com/openmf/fineract-deploy/pkg/runner"
)

func appsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "apps",
		EnableShellCompletion: true,
		Usage:                 "Deploy the Fineract application set through ArgoCD",
		Description: `Deploy the environment's applications.

Applies the app-of-apps Application and then every per-application manifest
explicitly, so each Application exists even while the controller is still
reconciling the parent. Applies use server-side apply; re-running against an
unchanged manifest set changes nothing.

With --propose-promotion, instead of applying anything, opens a pull request
promoting the upstream environment's branch into this environment's branch
(develop -> uat, uat -> main). ArgoCD picks the change up on merge.

# Examples

Deploy dev applications:
  findeploy apps --env dev

Propose promoting what runs in uat to production:
  findeploy apps --env production --propose-promotion`,
		Flags: []cli.Flag{
			envFlag,
			kubeconfigFlag,
			&cli.BoolFlag{
				Name:  "propose-promotion",
				Usage: "Open a promotion pull request instead of applying manifests",
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

			if cmd.Bool("propose-promotion") {
				url, err := gitops.ProposePromotion(ctx, runner.New(), env)
				if err != nil {
					return err
				}
				slog.Info("promotion pull request opened", "url", url)
				return nil
			}

			deployer, _, err := newGitopsDeployer(cfg, env.IsProduction())
			if err != nil {
				return err
			}
			applied, err := deployer.DeployApps(ctx, env)
			if err != nil {
				return err
			}
			slog.Info("application set deployed", "env", env.String(), "objects", applied)
			return nil
		},
	}
}
