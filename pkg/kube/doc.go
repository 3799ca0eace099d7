// Package kube wraps Kubernetes client construction and the small set of
// cluster operations the pipeline performs directly: namespace and secret
// reconciliation, kubeconfig derivation for off-host access, and read-only
// workload queries backing readiness probes and verification.
package kube
