// Package cli implements the command-line interface for the findeploy tool.
//
// # Overview
//
// The findeploy CLI drives GitOps deployment of the Fineract platform onto
// Kubernetes: Terraform provisioning, ArgoCD bootstrap, application rollout,
// sync and health verification, sealed-secrets key lifecycle, hostname
// configuration, and data-loader job execution. It is designed for platform
// operators promoting Fineract through dev, UAT, and production.
//
// # Commands
//
// deploy - Run the full pipeline:
//
//	findeploy deploy --env dev [--auto-approve]
//
// Sequences every deployment phase with per-step failure policies, writes a
// timestamped run log, and prints a closing summary with resume commands for
// any step that failed.
//
// provision - Manage cluster infrastructure:
//
//	findeploy provision --env uat [--auto-approve] [--destroy]
//
// Runs Terraform against the environment's tfvars file. Apply requires an
// interactive confirmation unless --auto-approve is set; --destroy tears the
// infrastructure down instead.
//
// configure - Connect and prepare the cluster:
//
//	findeploy configure --env dev [--external-address HOST] [--repo-url URL]
//
// Updates the kubeconfig from Terraform outputs, optionally rewrites the API
// server address for access through an external endpoint, waits for the API
// server and worker nodes to answer, creates the environment namespace,
// declares the database and object-storage Secrets from the provisioner
// outputs, and registers Git repository credentials for ArgoCD.
//
// bootstrap - Install ArgoCD and ingress:
//
//	findeploy bootstrap --env dev [--strict]
//
// apps - Deploy the application set:
//
//	findeploy apps --env uat [--propose-promotion]
//
// Applies the app-of-apps manifest and child applications, or opens a
// promotion pull request toward the environment's tracked branch.
//
// verify - Check deployment health:
//
//	findeploy verify --env production --full
//
// secrets - Sealing-key lifecycle:
//
//	findeploy secrets backup --env dev
//	findeploy secrets restore --env dev
//	findeploy secrets validate --env dev
//
// validate exits 0 when every sealed secret decrypts, 1 on decryption
// failure, 2 when the controller is not ready, 3 when no secrets exist.
//
// hostname - Rewrite load-balancer hostnames:
//
//	findeploy hostname --env dev --auto-detect [--dry-run]
//
// jobs - Run data-loader jobs:
//
//	findeploy jobs --env dev [--timeout 15m]
//
// preflight - Validate local tooling and credentials:
//
//	findeploy preflight --env dev [--profile deploy]
//
// # Global Flags
//
//	--log-level    Logging verbosity: debug, info, warn, error (default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// Most commands additionally accept --env (required), --output/-o,
// --format/-t (yaml or json), --kubeconfig, and --region.
//
// # Usage Examples
//
// Deploy dev end to end:
//
//	findeploy deploy --env dev
//
// Verify production after a promotion merge:
//
//	findeploy verify --env production --full
//
// Back up sealing keys before cluster teardown:
//
//	findeploy secrets backup --env uat
package cli
