/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/openmf/fineract-deploy/pkg/config"
	"github.com/openmf/fineract-deploy/pkg/configfiles"
	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/jobs"
	"github.com/openmf/fineract-deploy/pkg/kube"
	"github.com/openmf/fineract-deploy/pkg/orchestrator"
	"github.com/openmf/fineract-deploy/pkg/preflight"
	"github.com/openmf/fineract-deploy/pkg/runner"
	"github.com/openmf/fineract-deploy/pkg/sealedsecrets"
	"github.com/openmf/fineract-deploy/pkg/terraform"
	"github.com/openmf/fineract-deploy/pkg/verify"
)

func deployCmd() *cli.Command {
	return &cli.Command{
		Name:                  "deploy",
		EnableShellCompletion: true,
		Usage:                 "Run the full deployment pipeline",
		Description: `Run the full deployment pipeline for an environment.

The pipeline sequences every deployment phase: preflight checks, Terraform
provisioning, cluster configuration, sealing-key restore, ArgoCD bootstrap,
application deployment, data loading, hostname configuration, and final
verification. Progress is logged step by step ("3/9") and additionally to a
timestamped run-log file.

Each step carries a failure policy. Infrastructure steps are fatal; data
loading and verification warn and continue outside production; hostname
configuration is best-effort because the platform converges on it through
ArgoCD anyway. A fatal failure aborts with the failing position, and the
closing summary lists the standalone commands that resume the run.

# Examples

Deploy dev end to end:
  findeploy deploy --env dev

Deploy in CI without prompts:
  findeploy deploy --env uat --auto-approve`,
		Flags: []cli.Flag{
			envFlag,
			kubeconfigFlag,
			regionFlag,
			&cli.BoolFlag{
				Name:  "auto-approve",
				Usage: "Skip the interactive Terraform apply confirmation",
			},
			&cli.StringFlag{
				Name:    "terraform-dir",
				Sources: cli.EnvVars("FINDEPLOY_TERRAFORM_DIR"),
				Usage:   "Root of the Terraform configuration",
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
			if v := cmd.String("terraform-dir"); v != "" {
				cfg.TerraformDir = v
			}

			o := orchestrator.New(cfg.RunLogDir, deploySteps(cfg, env, cmd.Bool("auto-approve"))...)
			report, runErr := o.Execute(ctx)
			if report != nil {
				orchestrator.WriteSummary(os.Stdout, report)
			}
			return runErr
		},
	}
}

// deploySteps assembles the pipeline. Cluster clients are built inside each
// step, not up front: before provisioning there is no cluster to connect to.
func deploySteps(cfg *config.Config, env environment.Environment, autoApprove bool) []orchestrator.Step {
	resume := func(command string) string {
		return fmt.Sprintf("findeploy %s --env %s", command, env.String())
	}

	verifyPolicy := orchestrator.WarnAndContinue
	if env.IsProduction() {
		verifyPolicy = orchestrator.Fatal
	}

	return []orchestrator.Step{
		{
			Name:    "preflight",
			Command: resume("preflight"),
			Policy:  orchestrator.Fatal,
			Run: func(ctx context.Context) error {
				checks := preflight.New(runner.New(), nil)
				return checks.Run(ctx, preflight.RequiredTools("deploy")...).Err()
			},
		},
		{
			Name:    "provision",
			Command: resume("provision"),
			Policy:  orchestrator.Fatal,
			Run: func(ctx context.Context) error {
				confirm := terraform.StdinConfirm(os.Stdin, os.Stderr)
				if autoApprove {
					confirm = terraform.AutoApprove
				} else if cfg.NonInteractive {
					confirm = func(string) bool { return false }
				}
				p := terraform.New(runner.New(), cfg.TerraformDir,
					terraform.WithConfirm(confirm),
					terraform.WithStream(os.Stderr))
				_, err := p.Provision(ctx, env)
				return err
			},
		},
		{
			Name:    "configure",
			Command: resume("configure"),
			Policy:  orchestrator.Fatal,
			Run: func(ctx context.Context) error {
				r := runner.New()
				outputs, err := terraform.New(r, cfg.TerraformDir).Outputs(ctx)
				if err != nil {
					return err
				}
				clusterName, err := outputs.String(terraform.OutClusterName)
				if err != nil {
					return err
				}
				args := []string{"eks", "update-kubeconfig",
					"--region", cfg.Region,
					"--name", clusterName}
				if cfg.Kubeconfig != "" {
					args = append(args, "--kubeconfig", cfg.Kubeconfig)
				}
				if _, err := r.Run(ctx, runner.Command{Name: "aws", Args: args}); err != nil {
					return err
				}
				client, _, err := kube.BuildClient(cfg.Kubeconfig)
				if err != nil {
					return err
				}
				if err := kube.WaitClusterReady(ctx, client, 1); err != nil {
					return err
				}
				if err := kube.EnsureNamespace(ctx, client, env.Namespace(), map[string]string{
					"app.kubernetes.io/part-of": "fineract",
				}); err != nil {
					return err
				}
				_, err = applyPlatformSecrets(ctx, client, env, outputs)
				return err
			},
		},
		{
			Name:    "restore sealing keys",
			Command: resume("secrets restore"),
			Policy:  orchestrator.WarnAndContinue,
			Run: func(ctx context.Context) error {
				client, _, err := kube.BuildClient(cfg.Kubeconfig)
				if err != nil {
					return err
				}
				store := sealedsecrets.NewAWSStore(runner.New(), cfg.Region, cfg.StoreRateLimit)
				_, err = sealedsecrets.NewManager(client, store).Restore(ctx, env)
				return err
			},
		},
		{
			Name:    "bootstrap",
			Command: resume("bootstrap"),
			Policy:  orchestrator.Fatal,
			Run: func(ctx context.Context) error {
				deployer, _, err := newGitopsDeployer(cfg, env.IsProduction())
				if err != nil {
					return err
				}
				return deployer.Bootstrap(ctx, env)
			},
		},
		{
			Name:    "deploy applications",
			Command: resume("apps"),
			Policy:  orchestrator.Fatal,
			Run: func(ctx context.Context) error {
				deployer, _, err := newGitopsDeployer(cfg, env.IsProduction())
				if err != nil {
					return err
				}
				_, err = deployer.DeployApps(ctx, env)
				return err
			},
		},
		{
			Name:    "load data",
			Command: resume("jobs"),
			Policy:  orchestrator.WarnAndContinue,
			Run: func(ctx context.Context) error {
				client, _, err := kube.BuildClient(cfg.Kubeconfig)
				if err != nil {
					return err
				}
				_, err = jobs.NewRunner(client, cfg.ManifestDir).Run(ctx, env)
				return err
			},
		},
		{
			Name:    "configure hostname",
			Command: resume("hostname --auto-detect"),
			Policy:  orchestrator.BestEffort,
			Run: func(ctx context.Context) error {
				hostname, err := detectIngressHostname(ctx, cfg.Kubeconfig)
				if err != nil {
					return err
				}
				rewriter := &configfiles.Rewriter{}
				_, err = rewriter.Rewrite(hostnameTargetFiles(cfg.ManifestDir, env), "", hostname)
				return err
			},
		},
		{
			Name:    "verify",
			Command: resume("verify --full"),
			Policy:  verifyPolicy,
			Run: func(ctx context.Context) error {
				deployer, client, err := newGitopsDeployer(cfg, false)
				if err != nil {
					return err
				}
				var opts []verify.Option
				if cfg.SyncTimeout > 0 {
					opts = append(opts, verify.WithSyncWindow(cfg.SyncTimeout))
				}
				report, err := verify.New(client, deployer, opts...).Verify(ctx, env, verify.Full)
				if err != nil {
					return err
				}
				if report.Summary.Status == verify.Failed {
					return fmt.Errorf("verification failed: %d check(s) did not pass",
						report.Summary.Failed)
				}
				return nil
			},
		},
	}
}
