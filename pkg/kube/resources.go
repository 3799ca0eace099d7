/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package kube

import (
	"context"
	"log/slog"
	"maps"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/openmf/fineract-deploy/pkg/errors"
)

// EnsureNamespace creates the namespace if it does not already exist.
// Reruns are no-ops.
func EnsureNamespace(ctx context.Context, client Interface, name string, labels map[string]string) error {
	_, err := client.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if err == nil {
		return nil
	}
	if !apierrors.IsNotFound(err) {
		return errors.Wrap(errors.ErrCodeInternal, "failed to get namespace "+name, err)
	}

	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: labels,
		},
	}
	if _, err := client.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{}); err != nil {
		if apierrors.IsAlreadyExists(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInternal, "failed to create namespace "+name, err)
	}

	slog.Info("namespace created", "namespace", name)
	return nil
}

// ApplySecret declares the desired state of a Secret and reconciles toward
// it: create when absent, update when drifted, no-op when unchanged. Returns
// whether a mutation occurred so callers can assert idempotence.
func ApplySecret(ctx context.Context, client Interface, desired *corev1.Secret) (bool, error) {
	secrets := client.CoreV1().Secrets(desired.Namespace)

	existing, err := secrets.Get(ctx, desired.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		if _, err := secrets.Create(ctx, desired, metav1.CreateOptions{}); err != nil {
			return false, errors.Wrap(errors.ErrCodeInternal,
				"failed to create secret "+desired.Name, err)
		}
		slog.Info("secret created", "namespace", desired.Namespace, "name", desired.Name)
		return true, nil
	}
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInternal,
			"failed to get secret "+desired.Name, err)
	}

	if secretUnchanged(existing, desired) {
		slog.Debug("secret unchanged", "namespace", desired.Namespace, "name", desired.Name)
		return false, nil
	}

	existing.Data = desired.Data
	existing.StringData = desired.StringData
	existing.Type = desired.Type
	if existing.Labels == nil {
		existing.Labels = map[string]string{}
	}
	maps.Copy(existing.Labels, desired.Labels)

	if _, err := secrets.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return false, errors.Wrap(errors.ErrCodeInternal,
			"failed to update secret "+desired.Name, err)
	}
	slog.Info("secret updated", "namespace", desired.Namespace, "name", desired.Name)
	return true, nil
}

func secretUnchanged(existing, desired *corev1.Secret) bool {
	if existing.Type != desired.Type && desired.Type != "" {
		return false
	}

	// StringData is write-only; normalize to Data for comparison.
	want := make(map[string][]byte, len(desired.Data)+len(desired.StringData))
	maps.Copy(want, desired.Data)
	for k, v := range desired.StringData {
		want[k] = []byte(v)
	}

	if len(existing.Data) != len(want) {
		return false
	}
	for k, v := range want {
		if string(existing.Data[k]) != string(v) {
			return false
		}
	}
	for k, v := range desired.Labels {
		if existing.Labels[k] != v {
			return false
		}
	}
	return true
}
