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
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/gitops"
	"github.com/openmf/fineract-deploy/pkg/kube"
	"github.com/openmf/fineract-deploy/pkg/runner"
	"github.com/openmf/fineract-deploy/pkg/terraform"
)

// Platform Secrets the application workloads mount. Their content comes from
// terraform outputs, so they are re-declared on every configure run.
const (
	databaseSecretName = "fineract-database"
	storageSecretName  = "fineract-object-storage"
)

// platformSecrets builds the database and object-storage Secrets for the
// environment namespace from provisioner outputs. The database password never
// appears here; workloads resolve it through its Secrets Manager ARN.
func platformSecrets(env environment.Environment, outputs terraform.Outputs) ([]*corev1.Secret, error) {
	if err := outputs.Require(
		terraform.OutDBEndpoint,
		terraform.OutDBName,
		terraform.OutDBUsername,
		terraform.OutDBPasswordARN,
		terraform.OutArtifactBucket,
		terraform.OutBackupBucket,
	); err != nil {
		return nil, err
	}

	var readErr error
	read := func(key string) string {
		v, err := outputs.String(key)
		if err != nil && readErr == nil {
			// non-string output value; Require only checks presence
			readErr = err
		}
		return v
	}
	meta := func(name string) metav1.ObjectMeta {
		return metav1.ObjectMeta{
			Name:      name,
			Namespace: env.Namespace(),
			Labels:    map[string]string{"app.kubernetes.io/part-of": "fineract"},
		}
	}

	secrets := []*corev1.Secret{
		{
			ObjectMeta: meta(databaseSecretName),
			Type:       corev1.SecretTypeOpaque,
			Data: map[string][]byte{
				"host":              []byte(read(terraform.OutDBEndpoint)),
				"database":          []byte(read(terraform.OutDBName)),
				"username":          []byte(read(terraform.OutDBUsername)),
				"passwordSecretArn": []byte(read(terraform.OutDBPasswordARN)),
			},
		},
		{
			ObjectMeta: meta(storageSecretName),
			Type:       corev1.SecretTypeOpaque,
			Data: map[string][]byte{
				"artifactBucket": []byte(read(terraform.OutArtifactBucket)),
				"backupBucket":   []byte(read(terraform.OutBackupBucket)),
			},
		},
	}
	if readErr != nil {
		return nil, readErr
	}
	return secrets, nil
}

// applyPlatformSecrets declares the platform Secrets and reports how many
// actually changed; a rerun against unchanged outputs changes none.
func applyPlatformSecrets(ctx context.Context, client kube.Interface, env environment.Environment, outputs terraform.Outputs) (int, error) {
	secrets, err := platformSecrets(env, outputs)
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, secret := range secrets {
		mutated, err := kube.ApplySecret(ctx, client, secret)
		if err != nil {
			return changed, err
		}
		if mutated {
			changed++
		}
	}
	return changed, nil
}

func configureCmd() *cli.Command {
	return &cli.Command{
		Name:                  "configure",
		EnableShellCompletion: true,
		Usage:                 "Derive cluster access and prepare the environment namespace",
		Description: `Configure cluster access and the environment namespace after provisioning.

Reads the Terraform outputs, updates the kubeconfig for the provisioned
cluster (via "aws eks update-kubeconfig"), rewrites a loopback-advertised API
server address with the externally reachable one when --external-address is
given (the K3s case), waits for the API server and worker nodes to answer,
ensures the environment namespace exists, declares the database and
object-storage Secrets from the Terraform outputs, and applies the ArgoCD
repository credential when one is configured.

Re-running is safe: unchanged outputs leave every Secret untouched.

# Examples

Configure dev after provisioning:
  findeploy configure --env dev

Configure a K3s cluster that advertises 127.0.0.1:
  findeploy configure --env dev --external-address 203.0.113.10

Register the GitOps repository credential:
  findeploy configure --env uat --repo-url https://github.com/openmf/fineract-gitops`,
		Flags: []cli.Flag{
			envFlag,
			kubeconfigFlag,
			regionFlag,
			&cli.StringFlag{
				Name:    "terraform-dir",
				Sources: cli.EnvVars("FINDEPLOY_TERRAFORM_DIR"),
				Usage:   "Root of the Terraform configuration",
			},
			&cli.StringFlag{
				Name:  "external-address",
				Usage: "Externally reachable API server address replacing a loopback one",
			},
			&cli.StringFlag{
				Name:    "repo-url",
				Sources: cli.EnvVars("FINDEPLOY_REPO_URL"),
				Usage:   "GitOps repository URL for the ArgoCD credential",
			},
			&cli.StringFlag{
				Name:    "repo-username",
				Sources: cli.EnvVars("FINDEPLOY_REPO_USERNAME"),
				Value:   "git",
				Usage:   "Username paired with the repository token",
			},
			&cli.StringFlag{
				Name:    "repo-token",
				Sources: cli.EnvVars("FINDEPLOY_REPO_TOKEN"),
				Usage:   "Access token for the GitOps repository",
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

			r := runner.New()
			p := terraform.New(r, cfg.TerraformDir)
			outputs, err := p.Outputs(ctx)
			if err != nil {
				return err
			}
			if err := outputs.Require(terraform.OutClusterName); err != nil {
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
			slog.Info("kubeconfig updated", "cluster", clusterName, "region", cfg.Region)

			if external := cmd.String("external-address"); external != "" && cfg.Kubeconfig != "" {
				raw, err := os.ReadFile(cfg.Kubeconfig)
				if err != nil {
					return err
				}
				rewritten, err := kube.RewriteServerAddress(raw, external)
				if err != nil {
					return err
				}
				if err := kube.WriteKubeconfig(cfg.Kubeconfig, rewritten); err != nil {
					return err
				}
			}

			client, dyn, err := clusterClients(cfg)
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

			changed, err := applyPlatformSecrets(ctx, client, env, outputs)
			if err != nil {
				return err
			}
			slog.Info("platform secrets declared", "env", env.String(), "changed", changed)

			if repoURL := cmd.String("repo-url"); repoURL != "" {
				deployer := gitops.NewDeployer(client, dyn, cfg.ManifestDir)
				if err := kube.EnsureNamespace(ctx, client, gitops.ArgoCDNamespace, nil); err != nil {
					return err
				}
				if _, err := deployer.EnsureRepoCredential(ctx, gitops.RepoCredential{
					URL:      repoURL,
					Username: cmd.String("repo-username"),
					Token:    cmd.String("repo-token"),
				}); err != nil {
					return err
				}
			}

			slog.Info("environment configured", "env", env.String(), "namespace", env.Namespace())
			return nil
		},
	}
}
