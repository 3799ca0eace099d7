/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package sealedsecrets

import (
	"context"
	"fmt"
	"log/slog"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/errors"
	"github.com/openmf/fineract-deploy/pkg/kube"
)

const (
	// ControllerNamespace is where the sealed-secrets controller and its
	// sealing keys live.
	ControllerNamespace = "kube-system"

	// ControllerDeployment is the controller's deployment name.
	ControllerDeployment = "sealed-secrets-controller"

	// activeKeyLabel selects the controller's active sealing keys.
	activeKeyLabel = "sealedsecrets.bitnami.com/sealed-secrets-key=active"
)

// StoredName returns the secret-store entry holding the environment's
// backup bundle.
func StoredName(env environment.Environment) string {
	return env.SecretPrefix() + "/sealed-secrets-keys"
}

// Manager performs sealing-key backup, verification, and restore.
type Manager struct {
	client kube.Interface
	store  Store
}

// NewManager creates a Manager.
func NewManager(client kube.Interface, store Store) *Manager {
	return &Manager{client: client, store: store}
}

// Backup extracts all active sealing keys, bundles them with metadata, and
// persists the bundle in the external store. An empty extraction is fatal:
// backing up nothing silently would defeat the point of a backup.
func (m *Manager) Backup(ctx context.Context, env environment.Environment, sourceContext string) (*Bundle, error) {
	list, err := m.client.CoreV1().Secrets(ControllerNamespace).List(ctx, metav1.ListOptions{
		LabelSelector: activeKeyLabel,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to list sealing keys", err)
	}
	if len(list.Items) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound,
			"no active sealing keys found in "+ControllerNamespace)
	}

	bundle := NewBundle(env, sourceContext, list.Items)

	payload, err := bundle.Marshal()
	if err != nil {
		return nil, err
	}
	if err := m.store.Put(ctx, StoredName(env), payload); err != nil {
		return nil, err
	}

	slog.Info("sealing keys backed up",
		"env", env.String(),
		"keys", bundle.KeyCount,
		"bundle", bundle.ID)
	return bundle, nil
}

// VerifyStored retrieves the stored bundle and enforces the round-trip
// invariant against the expected key count. Any mismatch is fatal.
func (m *Manager) VerifyStored(ctx context.Context, env environment.Environment, expectedCount int) (*Bundle, error) {
	raw, err := m.store.Get(ctx, StoredName(env))
	if err != nil {
		return nil, err
	}

	bundle, err := UnmarshalBundle(raw)
	if err != nil {
		return nil, err
	}

	if bundle.KeyCount != expectedCount {
		return nil, errors.NewWithContext(errors.ErrCodeCountMismatch,
			fmt.Sprintf("stored bundle has %d keys, expected %d", bundle.KeyCount, expectedCount),
			map[string]any{"stored": bundle.KeyCount, "expected": expectedCount})
	}

	slog.Info("stored bundle verified", "env", env.String(), "keys", bundle.KeyCount)
	return bundle, nil
}

// Restore re-applies the stored sealing keys into the controller namespace.
// The controller must be restarted afterwards to pick them up; Restore
// deletes its pods so the deployment recreates them against the restored
// keys.
func (m *Manager) Restore(ctx context.Context, env environment.Environment) (int, error) {
	raw, err := m.store.Get(ctx, StoredName(env))
	if err != nil {
		return 0, err
	}

	bundle, err := UnmarshalBundle(raw)
	if err != nil {
		return 0, err
	}

	secrets, err := bundle.Secrets(ControllerNamespace)
	if err != nil {
		return 0, err
	}

	restored := 0
	for _, secret := range secrets {
		changed, err := kube.ApplySecret(ctx, m.client, secret)
		if err != nil {
			return restored, err
		}
		if changed {
			restored++
		}
	}

	if err := m.restartController(ctx); err != nil {
		return restored, err
	}

	slog.Info("sealing keys restored",
		"env", env.String(),
		"applied", restored,
		"total", len(secrets))
	return restored, nil
}

func (m *Manager) restartController(ctx context.Context) error {
	pods := m.client.CoreV1().Pods(ControllerNamespace)
	list, err := pods.List(ctx, metav1.ListOptions{
		LabelSelector: "name=" + ControllerDeployment,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to list controller pods", err)
	}
	for _, pod := range list.Items {
		if err := pods.Delete(ctx, pod.Name, metav1.DeleteOptions{}); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to delete controller pod "+pod.Name, err)
		}
		slog.Info("controller pod deleted for restart", "pod", pod.Name)
	}
	return nil
}
