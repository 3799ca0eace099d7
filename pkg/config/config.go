/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/openmf/fineract-deploy/pkg/errors"
)

// Config carries ambient runtime settings shared by every command. Values
// come from FINDEPLOY_* environment variables; flags override per command.
type Config struct {
	// Region is the cloud region for secret-store and ELB operations.
	Region string `env:"FINDEPLOY_REGION" envDefault:"us-east-2"`

	// Kubeconfig is an explicit kubeconfig path. Empty means client-go
	// auto-discovery (KUBECONFIG, ~/.kube/config, in-cluster).
	Kubeconfig string `env:"FINDEPLOY_KUBECONFIG"`

	// TerraformDir is the root of the Terraform configuration.
	TerraformDir string `env:"FINDEPLOY_TERRAFORM_DIR" envDefault:"terraform"`

	// ManifestDir is the root of the GitOps manifest tree.
	ManifestDir string `env:"FINDEPLOY_MANIFEST_DIR" envDefault:"argocd"`

	// NonInteractive disables confirmation prompts. Prompts then resolve
	// to their default answer, which for terraform apply is deny.
	NonInteractive bool `env:"FINDEPLOY_NON_INTERACTIVE"`

	// RunLogDir is where deploy runs persist their timestamped log file.
	RunLogDir string `env:"FINDEPLOY_RUN_LOG_DIR" envDefault:"logs"`

	// SyncTimeout overrides the full-verification polling window.
	SyncTimeout time.Duration `env:"FINDEPLOY_SYNC_TIMEOUT"`

	// StoreRateLimit caps secret-store calls per second. The AWS CLI has
	// no client-side throttling of its own.
	StoreRateLimit float64 `env:"FINDEPLOY_STORE_RATE_LIMIT" envDefault:"5"`
}

// Load parses ambient configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest,
			"failed to parse FINDEPLOY_* environment", err)
	}
	return cfg, nil
}
