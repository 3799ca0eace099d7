/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package sealedsecrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/errors"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	entries map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string][]byte)}
}

func (s *memStore) Put(_ context.Context, name string, payload []byte) error {
	s.entries[name] = payload
	return nil
}

func (s *memStore) Get(_ context.Context, name string) ([]byte, error) {
	raw, ok := s.entries[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no stored secret "+name)
	}
	return raw, nil
}

func TestStoredName(t *testing.T) {
	assert.Equal(t, "fineract/dev/sealed-secrets-keys", StoredName(environment.Dev))
	assert.Equal(t, "fineract/production/sealed-secrets-keys", StoredName(environment.Production))
}

func TestBackupAndVerify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	keyA := sealingKeySecret("sealed-secrets-key-a")
	keyB := sealingKeySecret("sealed-secrets-key-b")
	keyC := sealingKeySecret("sealed-secrets-key-c")
	client := fake.NewClientset(&keyA, &keyB, &keyC)
	store := newMemStore()
	mgr := NewManager(client, store)

	bundle, err := mgr.Backup(ctx, environment.Dev, "ctx-old-cluster")
	require.NoError(t, err)
	assert.Equal(t, 3, bundle.KeyCount)
	assert.Contains(t, store.entries, StoredName(environment.Dev))

	verified, err := mgr.VerifyStored(ctx, environment.Dev, 3)
	require.NoError(t, err)
	assert.Equal(t, bundle.ID, verified.ID)

	_, err = mgr.VerifyStored(ctx, environment.Dev, 5)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCountMismatch, errors.CodeOf(err))
}

func TestBackupNoKeysIsFatal(t *testing.T) {
	t.Parallel()

	// Unlabeled secrets must not count as sealing keys.
	plain := sealingKeySecret("plain-secret")
	plain.Labels = nil
	client := fake.NewClientset(&plain)
	mgr := NewManager(client, newMemStore())

	_, err := mgr.Backup(context.Background(), environment.Dev, "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func TestRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	keyA := sealingKeySecret("sealed-secrets-key-a")
	keyB := sealingKeySecret("sealed-secrets-key-b")
	source := fake.NewClientset(&keyA, &keyB)
	store := newMemStore()

	_, err := NewManager(source, store).Backup(ctx, environment.UAT, "")
	require.NoError(t, err)

	// Fresh cluster: no keys present yet.
	target := fake.NewClientset()
	restored, err := NewManager(target, store).Restore(ctx, environment.UAT)
	require.NoError(t, err)
	assert.Equal(t, 2, restored)

	got, err := target.CoreV1().Secrets(ControllerNamespace).List(ctx, metav1.ListOptions{
		LabelSelector: activeKeyLabel,
	})
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)

	// Re-applying identical keys changes nothing.
	restored, err = NewManager(target, store).Restore(ctx, environment.UAT)
	require.NoError(t, err)
	assert.Zero(t, restored)
}

func TestRestoreMissingBundle(t *testing.T) {
	t.Parallel()

	mgr := NewManager(fake.NewClientset(), newMemStore())
	_, err := mgr.Restore(context.Background(), environment.Production)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}
