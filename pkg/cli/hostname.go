/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/openmf/fineract-deploy/pkg/configfiles"
	"github.com/openmf/fineract-deploy/pkg/defaults"
	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/errors"
	"github.com/openmf/fineract-deploy/pkg/gitops"
	"github.com/openmf/fineract-deploy/pkg/kube"
	"github.com/openmf/fineract-deploy/pkg/waiter"
)

// rewriteTargets are the environment files that embed the external
// endpoint.
var rewriteTargets = []string{
	"app-of-apps.yaml",
	"fineract-config.yaml",
	"web-app-config.yaml",
	"oauth-config.yaml",
	"ingress.yaml",
}

func hostnameTargetFiles(manifestDir string, env environment.Environment) []string {
	files := make([]string, 0, len(rewriteTargets))
	for _, name := range rewriteTargets {
		files = append(files, filepath.Join(manifestDir, env.String(), name))
	}
	return files
}

func hostnameCmd() *cli.Command {
	return &cli.Command{
		Name:                  "hostname",
		EnableShellCompletion: true,
		Usage:                 "Rewrite configuration files with the external endpoint",
		Description: `Rewrite the environment's configuration files with the load-balancer
hostname.

Replaces the placeholder token (` + configfiles.Placeholder + `),
an explicitly given previous hostname, or any ELB-shaped hostname with the
new endpoint across the environment's file set. Files containing none of
these are skipped; listed files that do not exist are reported, not fatal.
Each file is replaced atomically and the operation is idempotent.

The new hostname comes from --hostname, or with --auto-detect from the
ingress-nginx controller service's load-balancer status (waiting for the
cloud provider to assign one when necessary).

# Examples

Rewrite with an explicit hostname:
  findeploy hostname --env dev --hostname abc123.elb.us-east-2.amazonaws.com

Detect the hostname from the cluster:
  findeploy hostname --env uat --auto-detect

Preview without writing:
  findeploy hostname --env dev --auto-detect --dry-run`,
		Flags: []cli.Flag{
			envFlag,
			kubeconfigFlag,
			&cli.StringFlag{
				Name:  "hostname",
				Usage: "New external hostname to embed",
			},
			&cli.BoolFlag{
				Name:  "auto-detect",
				Usage: "Read the hostname from the ingress controller's load balancer",
			},
			&cli.StringFlag{
				Name:  "old-hostname",
				Usage: "Previous hostname to replace in addition to the placeholder",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would change without writing",
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

			newHost := cmd.String("hostname")
			if newHost == "" && !cmd.Bool("auto-detect") {
				return errors.New(errors.ErrCodeInvalidRequest,
					"either --hostname or --auto-detect is required")
			}
			if newHost == "" {
				newHost, err = detectIngressHostname(ctx, cfg.Kubeconfig)
				if err != nil {
					return err
				}
			}

			rewriter := &configfiles.Rewriter{DryRun: cmd.Bool("dry-run")}
			report, err := rewriter.Rewrite(
				hostnameTargetFiles(cfg.ManifestDir, env),
				cmd.String("old-hostname"),
				newHost)
			if err != nil {
				return err
			}
			return writeResult(ctx, cmd, report)
		},
	}
}

// detectIngressHostname waits for the ingress controller's load balancer to
// carry a hostname and returns it.
func detectIngressHostname(ctx context.Context, kubeconfig string) (string, error) {
	client, _, err := kube.BuildClient(kubeconfig)
	if err != nil {
		return "", err
	}

	var hostname string
	outcome, err := waiter.Wait(ctx, waiter.Probe{
		Desc:     "load balancer hostname assignment",
		Interval: defaults.PollIntervalFast,
		Timeout:  defaults.IngressHostnameTimeout,
		Check: kube.LoadBalancerHostnameCondition(client,
			gitops.IngressNamespace, "ingress-nginx-controller", &hostname),
	})
	if outcome != waiter.Ready {
		return "", errors.Wrap(errors.ErrCodeTimeout,
			fmt.Sprintf("no load balancer hostname assigned (outcome: %s)", outcome), err)
	}
	return hostname, nil
}
