/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package gitops

import (
	"context"
	"log/slog"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/openmf/fineract-deploy/pkg/errors"
	"github.com/openmf/fineract-deploy/pkg/kube"
)

// repoSecretTypeLabel is the label ArgoCD watches to discover repository
// credential Secrets.
const repoSecretTypeLabel = "argocd.argoproj.io/secret-type"

// RepoCredential is the Git access configuration for ArgoCD.
type RepoCredential struct {
	// Name of the credential Secret.
	Name string
	// URL of the Git repository.
	URL string
	// Username for HTTPS auth. Tokens typically pair with a fixed username.
	Username string
	// Token is the password or personal access token.
	Token string
}

// EnsureRepoCredential creates or updates the ArgoCD repository credential
// Secret. Returns whether anything changed.
func (d *Deployer) EnsureRepoCredential(ctx context.Context, cred RepoCredential) (bool, error) {
	if cred.URL == "" || cred.Token == "" {
		return false, errors.New(errors.ErrCodeInvalidRequest,
			"repository credential requires a URL and a token")
	}
	if cred.Name == "" {
		cred.Name = "repo-fineract"
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cred.Name,
			Namespace: ArgoCDNamespace,
			Labels: map[string]string{
				repoSecretTypeLabel: "repository",
			},
		},
		Type: corev1.SecretTypeOpaque,
		StringData: map[string]string{
			"type":     "git",
			"url":      cred.URL,
			"username": cred.Username,
			"password": cred.Token,
		},
	}

	changed, err := kube.ApplySecret(ctx, d.client, secret)
	if err != nil {
		return false, err
	}
	if changed {
		slog.Info("repository credential applied", "secret", cred.Name, "url", cred.URL)
	}
	return changed, nil
}
