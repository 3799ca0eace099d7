/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package defaults

import "time"

// Polling cadence shared by readiness waits.
const (
	// PollInterval is the sleep between readiness probe attempts.
	PollInterval = 10 * time.Second

	// PollIntervalFast is used for cheap in-cluster checks (pod phase,
	// deployment availability) where tighter feedback is worth the load.
	PollIntervalFast = 5 * time.Second
)

// Terraform timeouts for infrastructure provisioning stages.
const (
	// TerraformInitTimeout bounds provider/plugin resolution.
	TerraformInitTimeout = 5 * time.Minute

	// TerraformPlanTimeout bounds plan generation.
	TerraformPlanTimeout = 15 * time.Minute

	// TerraformApplyTimeout bounds resource creation. EKS control planes
	// routinely take 15-20 minutes.
	TerraformApplyTimeout = 45 * time.Minute
)

// Kubernetes timeouts for cluster operations.
const (
	// K8sAPITimeout is the timeout for single Kubernetes API calls.
	K8sAPITimeout = 30 * time.Second

	// APIServerReadyTimeout bounds the wait for a freshly provisioned
	// control plane to answer.
	APIServerReadyTimeout = 10 * time.Minute

	// NodesReadyTimeout bounds the wait for worker nodes to register.
	NodesReadyTimeout = 10 * time.Minute

	// DeploymentReadyTimeout bounds the wait for a single deployment to
	// report available.
	DeploymentReadyTimeout = 5 * time.Minute

	// IngressHostnameTimeout bounds the wait for a load-balancer hostname
	// assignment.
	IngressHostnameTimeout = 10 * time.Minute

	// JobCompletionTimeout bounds a single data-loader Job run.
	JobCompletionTimeout = 10 * time.Minute
)

// GitOps timeouts for ArgoCD operations.
const (
	// BootstrapReadyTimeout bounds the wait for ArgoCD and ingress
	// controller deployments after manifest apply.
	BootstrapReadyTimeout = 5 * time.Minute

	// SyncHealthTimeout is the window over which full verification polls
	// per-application sync and health status.
	SyncHealthTimeout = 10 * time.Minute
)

// External CLI timeouts.
const (
	// CommandTimeout is the default timeout for short external commands
	// (aws sts, kubeseal, gh).
	CommandTimeout = 2 * time.Minute

	// SecretStoreTimeout bounds a single secret-store call.
	SecretStoreTimeout = 1 * time.Minute
)
