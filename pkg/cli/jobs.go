/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/openmf/fineract-deploy/pkg/jobs"
	"github.com/openmf/fineract-deploy/pkg/kube"
)

func jobsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "jobs",
		EnableShellCompletion: true,
		Usage:                 "Run the data-loader jobs sequentially by sync wave",
		Description: `Run the Fineract data-loader Jobs in dependency order.

Loaders execute strictly by sync wave (system foundation, then products,
accounting, entities, transactions, calendar), matching the order a full
ArgoCD sync would apply them in. Each loader's previous Job is deleted and
re-created from its manifest, then awaited through the batch API. The
sequence aborts at the first failure since later waves depend on the data
earlier ones load.

Per-loader durations are reported at the end, including for a failed run so
the operator can see how far the sequence got.

# Examples

Load dev data:
  findeploy jobs --env dev

With a longer per-job completion timeout:
  findeploy jobs --env uat --timeout 30m`,
		Flags: []cli.Flag{
			envFlag,
			kubeconfigFlag,
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-job completion timeout (default: 10m)",
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

			client, _, err := kube.BuildClient(cfg.Kubeconfig)
			if err != nil {
				return err
			}

			var opts []jobs.Option
			if d := cmd.Duration("timeout"); d > 0 {
				opts = append(opts, jobs.WithTimeout(d))
			}
			runner := jobs.NewRunner(client, cfg.ManifestDir, opts...)

			results, runErr := runner.Run(ctx, env)
			if len(results) > 0 {
				if err := writeResult(ctx, cmd, results); err != nil {
					return err
				}
			}
			return runErr
		},
	}
}
