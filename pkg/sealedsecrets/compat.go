/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package sealedsecrets

import (
	"context"
	"log/slog"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/errors"
	"github.com/openmf/fineract-deploy/pkg/kube"
)

// Verdict is the compatibility-validation outcome. The exit-code mapping is
// a contract with calling automation and must not change.
type Verdict int

const (
	// Compatible: every inspected secret decrypted. Exit code 0.
	Compatible Verdict = 0
	// Incompatible: at least one secret reports a decryption-key mismatch.
	// Exit code 1.
	Incompatible Verdict = 1
	// ControllerNotReady: the controller has zero ready replicas; nothing
	// can be concluded about the secrets. Exit code 2.
	ControllerNotReady Verdict = 2
	// NoSecretsFound: the controller is up but the namespace holds no
	// SealedSecret resources. Exit code 3.
	NoSecretsFound Verdict = 3
)

// String implements fmt.Stringer.
func (v Verdict) String() string {
	switch v {
	case Compatible:
		return "compatible"
	case Incompatible:
		return "incompatible"
	case ControllerNotReady:
		return "controller-not-ready"
	case NoSecretsFound:
		return "no-secrets-found"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit code for the verdict.
func (v Verdict) ExitCode() int { return int(v) }

// decryptFailureNeedle is the controller's message for a key mismatch.
// The controller exposes no structured cause for this condition, so string
// matching is the only detection mechanism available. Known fragility.
const decryptFailureNeedle = "no key could decrypt"

// SealedSecretGVR locates SealedSecret custom resources.
var SealedSecretGVR = schema.GroupVersionResource{
	Group:    "bitnami.com",
	Version:  "v1alpha1",
	Resource: "sealedsecrets",
}

// SecretState is the per-secret classification during validation.
type SecretState string

const (
	// Decrypted: the secret's Synced condition is true.
	Decrypted SecretState = "decrypted"
	// DecryptError: the Synced condition carries the key-mismatch message.
	DecryptError SecretState = "decrypt-error"
	// PendingDecryption: no conclusive condition yet.
	PendingDecryption SecretState = "pending"
)

// CompatReport is the full validation result.
type CompatReport struct {
	Verdict Verdict                `json:"verdict" yaml:"verdict"`
	Secrets map[string]SecretState `json:"secrets,omitempty" yaml:"secrets,omitempty"`
}

// Validator inspects SealedSecret resources after a cluster recreation to
// detect whether the restored sealing keys can decrypt them.
type Validator struct {
	client  kube.Interface
	dynamic dynamic.Interface
}

// NewValidator creates a Validator.
func NewValidator(client kube.Interface, dyn dynamic.Interface) *Validator {
	return &Validator{client: client, dynamic: dyn}
}

// Validate is a point-in-time snapshot with no internal retries; callers
// re-invoke it when polling is wanted. The check never mutates cluster
// state.
func (v *Validator) Validate(ctx context.Context, env environment.Environment) (*CompatReport, error) {
	ready, err := kube.DeploymentReadyReplicas(ctx, v.client, ControllerNamespace, ControllerDeployment)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read controller status", err)
	}
	if ready == 0 {
		slog.Warn("sealed-secrets controller not ready", "namespace", ControllerNamespace)
		return &CompatReport{Verdict: ControllerNotReady}, nil
	}

	list, err := v.dynamic.Resource(SealedSecretGVR).Namespace(env.Namespace()).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to list sealed secrets", err)
	}
	if len(list.Items) == 0 {
		slog.Warn("no sealed secrets found", "namespace", env.Namespace())
		return &CompatReport{Verdict: NoSecretsFound}, nil
	}

	report := &CompatReport{
		Verdict: Compatible,
		Secrets: make(map[string]SecretState, len(list.Items)),
	}

	for _, item := range list.Items {
		state := classify(&item)
		report.Secrets[item.GetName()] = state
		if state == DecryptError {
			report.Verdict = Incompatible
		}
		slog.Debug("sealed secret inspected", "name", item.GetName(), "state", string(state))
	}

	slog.Info("compatibility validation finished",
		"env", env.String(),
		"verdict", report.Verdict.String(),
		"secrets", len(report.Secrets))
	return report, nil
}

func classify(item *unstructured.Unstructured) SecretState {
	conditions, found, err := unstructured.NestedSlice(item.Object, "status", "conditions")
	if err != nil || !found {
		return PendingDecryption
	}

	for _, c := range conditions {
		cond, ok := c.(map[string]any)
		if !ok {
			continue
		}
		if cond["type"] != "Synced" {
			continue
		}
		message, _ := cond["message"].(string)
		if strings.Contains(message, decryptFailureNeedle) {
			return DecryptError
		}
		if cond["status"] == "True" {
			return Decrypted
		}
	}
	return PendingDecryption
}
