/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/openmf/fineract-deploy/pkg/verify"
)

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:                  "verify",
		EnableShellCompletion: true,
		Usage:                 "Verify deployment health (read-only)",
		Description: `Verify the environment's deployment health.

Quick mode (the default) is a single read-only pass: core deployments
available, services and the ingress present. Full mode additionally polls
ArgoCD application sync and health until everything converges or the window
closes.

The command never mutates cluster state. A report is written per --output
and --format; advisory findings degrade the report, critical ones fail it
and the command exits non-zero.

# Examples

Quick check after a deploy:
  findeploy verify --env dev

Full convergence check with a JSON report:
  findeploy verify --env production --full --format json -o report.json`,
		Flags: []cli.Flag{
			envFlag,
			kubeconfigFlag,
			&cli.BoolFlag{
				Name:  "full",
				Usage: "Also poll ArgoCD application sync and health",
			},
			outputFlag,
			formatFlag,
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

			mode := verify.Quick
			if cmd.Bool("full") {
				mode = verify.Full
			}

			deployer, client, err := newGitopsDeployer(cfg, false)
			if err != nil {
				return err
			}

			var opts []verify.Option
			if cfg.SyncTimeout > 0 {
				opts = append(opts, verify.WithSyncWindow(cfg.SyncTimeout))
			}
			v := verify.New(client, deployer, opts...)

			report, err := v.Verify(ctx, env, mode)
			if err != nil {
				return err
			}
			if err := writeResult(ctx, cmd, report); err != nil {
				return err
			}

			if report.Summary.Status == verify.Failed {
				return cli.Exit(fmt.Sprintf("verification failed: %d check(s) did not pass",
					report.Summary.Failed), 1)
			}
			return nil
		},
	}
}
