/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/openmf/fineract-deploy/pkg/config"
	"github.com/openmf/fineract-deploy/pkg/kube"
	"github.com/openmf/fineract-deploy/pkg/preflight"
	"github.com/openmf/fineract-deploy/pkg/runner"
	"github.com/openmf/fineract-deploy/pkg/sealedsecrets"
)

func secretsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "secrets",
		EnableShellCompletion: true,
		Usage:                 "Manage sealed-secrets sealing keys across cluster recreations",
		Description: `Manage the Bitnami sealed-secrets sealing keys.

Losing the sealing keys makes every committed SealedSecret permanently
undecryptable, so the keys are backed up to AWS Secrets Manager before any
cluster teardown and restored into the fresh cluster afterwards.

Preflight requires kubeseal on PATH: when validate reports incompatible
secrets, the fix is re-sealing the committed manifests with kubeseal, so a
missing binary is surfaced before any cluster work.

Subcommands:

backup   - extract the active sealing keys from kube-system, bundle them
           with metadata, store the bundle, and verify the stored copy
           round-trips with the same key count.
restore  - fetch the stored bundle, re-apply the keys, and restart the
           controller so it picks them up.
validate - check whether the restored keys decrypt the SealedSecrets the
           environment carries. Exit codes form a contract for calling
           automation:
             0  compatible
             1  incompatible (at least one secret cannot be decrypted)
             2  controller not ready
             3  no sealed secrets found`,
		Commands: []*cli.Command{
			secretsBackupCmd(),
			secretsRestoreCmd(),
			secretsValidateCmd(),
		},
	}
}

func newSecretsManager(ctx context.Context, cfg *config.Config) (*sealedsecrets.Manager, error) {
	r := runner.New()
	checks := preflight.New(r, nil)
	if err := checks.Run(ctx, preflight.RequiredTools("secrets")...).Err(); err != nil {
		return nil, err
	}
	client, _, err := kube.BuildClient(cfg.Kubeconfig)
	if err != nil {
		return nil, err
	}
	store := sealedsecrets.NewAWSStore(r, cfg.Region, cfg.StoreRateLimit)
	return sealedsecrets.NewManager(client, store), nil
}

func secretsBackupCmd() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Back up the active sealing keys to the secret store",
		Flags: []cli.Flag{
			envFlag,
			regionFlag,
			kubeconfigFlag,
			&cli.StringFlag{
				Name:  "source-context",
				Usage: "Identifier of the cluster the keys come from, recorded in the bundle",
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
			mgr, err := newSecretsManager(ctx, cfg)
			if err != nil {
				return err
			}

			bundle, err := mgr.Backup(ctx, env, cmd.String("source-context"))
			if err != nil {
				return err
			}

			// Round-trip check: what we stored must read back with the
			// same key count.
			if _, err := mgr.VerifyStored(ctx, env, bundle.KeyCount); err != nil {
				return err
			}

			// Report metadata only; key material stays in the store.
			return writeResult(ctx, cmd, map[string]any{
				"id":          bundle.ID,
				"environment": bundle.Environment,
				"timestamp":   bundle.Timestamp,
				"keyCount":    bundle.KeyCount,
				"storedAs":    sealedsecrets.StoredName(env),
			})
		},
	}
}

func secretsRestoreCmd() *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Restore sealing keys from the secret store into the cluster",
		Flags: []cli.Flag{
			envFlag,
			regionFlag,
			kubeconfigFlag,
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
			mgr, err := newSecretsManager(ctx, cfg)
			if err != nil {
				return err
			}

			restored, err := mgr.Restore(ctx, env)
			if err != nil {
				return err
			}
			slog.Info("restore complete", "env", env.String(), "applied", restored)
			return nil
		},
	}
}

func secretsValidateCmd() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Check restored sealing keys against the environment's sealed secrets",
		Flags: []cli.Flag{
			envFlag,
			kubeconfigFlag,
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

			client, dyn, err := clusterClients(cfg)
			if err != nil {
				return err
			}
			validator := sealedsecrets.NewValidator(client, dyn)

			report, err := validator.Validate(ctx, env)
			if err != nil {
				return err
			}
			if err := writeResult(ctx, cmd, report); err != nil {
				return err
			}

			if report.Verdict != sealedsecrets.Compatible {
				return cli.Exit(report.Verdict.String(), report.Verdict.ExitCode())
			}
			return nil
		},
	}
}
