/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package gitops

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/errors"
	"github.com/openmf/fineract-deploy/pkg/runner"
)

func newDynamicFake(objects ...runtime.Object) *dynamicfake.FakeDynamicClient {
	scheme := runtime.NewScheme()
	client := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme,
		map[schema.GroupVersionResource]string{
			ApplicationGVR: "ApplicationList",
			crdGVR:         "CustomResourceDefinitionList",
		}, objects...)
	// The fake's legacy object tracker cannot emulate server-side apply for
	// unstructured objects: it rejects an apply of an object that does not
	// exist yet, and its strategic-merge fallback fails on Unstructured.
	// Translate apply patches into create-or-update so the fixture matches
	// real API-server behavior.
	client.PrependReactor("patch", "*", func(action k8stesting.Action) (bool, runtime.Object, error) {
		patch, ok := action.(k8stesting.PatchAction)
		if !ok || patch.GetPatchType() != types.ApplyPatchType {
			return false, nil, nil
		}
		gvr := patch.GetResource()
		ns := patch.GetNamespace()
		obj := &unstructured.Unstructured{}
		if err := json.Unmarshal(patch.GetPatch(), obj); err != nil {
			return true, nil, err
		}
		if _, err := client.Tracker().Get(gvr, ns, patch.GetName()); err != nil {
			if !apierrors.IsNotFound(err) {
				return true, nil, err
			}
			if err := client.Tracker().Create(gvr, obj, ns); err != nil {
				return true, nil, err
			}
			return true, obj, nil
		}
		if err := client.Tracker().Update(gvr, obj, ns); err != nil {
			return true, nil, err
		}
		return true, obj, nil
	})
	return client
}

func establishedCRD(name string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "apiextensions.k8s.io/v1",
		"kind":       "CustomResourceDefinition",
		"metadata":   map[string]any{"name": name},
		"status": map[string]any{
			"conditions": []any{
				map[string]any{"type": "Established", "status": "True"},
			},
		},
	}}
}

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const appOfApps = `apiVersion: argoproj.io/v1alpha1
kind: Application
metadata:
  name: fineract-dev
spec:
  project: default
`

const childApps = `apiVersion: argoproj.io/v1alpha1
kind: Application
metadata:
  name: fineract-backend
spec:
  project: default
---
apiVersion: argoproj.io/v1alpha1
kind: Application
metadata:
  name: fineract-web
spec:
  project: default
`

func TestLoadManifests(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeManifest(t, dir, "apps.yaml", childApps+"---\n")

	objects, err := loadManifests(path)
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "fineract-backend", objects[0].GetName())
	assert.Equal(t, "Application", objects[1].GetKind())
}

func TestLoadManifestsMissingFile(t *testing.T) {
	t.Parallel()

	_, err := loadManifests("/nonexistent/apps.yaml")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func TestLoadManifestsRejectsKindlessDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeManifest(t, dir, "bad.yaml", "metadata:\n  name: nameless\n")

	_, err := loadManifests(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestDeployApps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	manifestDir := t.TempDir()
	envDir := filepath.Join(manifestDir, "dev")
	writeManifest(t, envDir, "app-of-apps.yaml", appOfApps)
	writeManifest(t, filepath.Join(envDir, "apps"), "apps.yaml", childApps)

	dyn := newDynamicFake()
	d := NewDeployer(fake.NewClientset(), dyn, manifestDir)

	applied, err := d.DeployApps(ctx, environment.Dev)
	require.NoError(t, err)
	assert.Equal(t, 3, applied)

	list, err := dyn.Resource(ApplicationGVR).Namespace(ArgoCDNamespace).List(ctx, metav1.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)

	// Second run re-applies the same set without error.
	applied, err = d.DeployApps(ctx, environment.Dev)
	require.NoError(t, err)
	assert.Equal(t, 3, applied)
}

func TestDeployAppsMissingParent(t *testing.T) {
	t.Parallel()

	d := NewDeployer(fake.NewClientset(), newDynamicFake(), t.TempDir())
	_, err := d.DeployApps(context.Background(), environment.Dev)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func applicationCR(name, sync, health string) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "argoproj.io/v1alpha1",
			"kind":       "Application",
			"metadata": map[string]any{
				"name":      name,
				"namespace": ArgoCDNamespace,
			},
		},
	}
	if sync != "" {
		obj.Object["status"] = map[string]any{
			"sync":   map[string]any{"status": sync},
			"health": map[string]any{"status": health},
		}
	}
	return obj
}

func TestAppStatus(t *testing.T) {
	t.Parallel()

	dyn := newDynamicFake(
		applicationCR("fineract-backend", "Synced", "Healthy"),
		applicationCR("fineract-web", "OutOfSync", "Progressing"),
		applicationCR("fineract-fresh", "", ""),
	)
	d := NewDeployer(fake.NewClientset(), dyn, "argocd")

	state, err := d.AppStatus(context.Background(), "fineract-backend")
	require.NoError(t, err)
	assert.True(t, state.Synced())

	state, err = d.AppStatus(context.Background(), "fineract-web")
	require.NoError(t, err)
	assert.False(t, state.Synced())
	assert.Equal(t, "OutOfSync", state.Sync)

	state, err = d.AppStatus(context.Background(), "fineract-fresh")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", state.Sync)
	assert.Equal(t, "Unknown", state.Health)

	_, err = d.AppStatus(context.Background(), "absent")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))

	states, err := d.ListAppStates(context.Background())
	require.NoError(t, err)
	assert.Len(t, states, 3)
}

func TestEnsureRepoCredential(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	client := fake.NewClientset()
	d := NewDeployer(client, newDynamicFake(), "argocd")

	cred := RepoCredential{
		URL:      "https://github.com/openmf/fineract-gitops",
		Username: "deploy-bot",
		Token:    "token-value",
	}
	changed, err := d.EnsureRepoCredential(ctx, cred)
	require.NoError(t, err)
	assert.True(t, changed)

	secret, err := client.CoreV1().Secrets(ArgoCDNamespace).Get(ctx, "repo-fineract", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "repository", secret.Labels[repoSecretTypeLabel])
	assert.Equal(t, "git", secret.StringData["type"])

	_, err = d.EnsureRepoCredential(ctx, RepoCredential{URL: "https://example.com"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func availableDeployment(namespace, name string) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name},
		Status: appsv1.DeploymentStatus{
			Conditions: []appsv1.DeploymentCondition{
				{Type: appsv1.DeploymentAvailable, Status: corev1.ConditionTrue},
			},
		},
	}
}

func TestBootstrap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	manifestDir := t.TempDir()
	installDir := filepath.Join(manifestDir, "install")
	writeManifest(t, installDir, "argocd-install.yaml", `apiVersion: v1
kind: ConfigMap
metadata:
  name: argocd-cm
data:
  url: https://argocd.fineract.dev
`)
	writeManifest(t, installDir, "ingress-nginx.yaml", `apiVersion: v1
kind: ConfigMap
metadata:
  name: ingress-nginx-controller
`)

	seed := make([]runtime.Object, 0, len(bootstrapTargets))
	for _, target := range bootstrapTargets {
		seed = append(seed, availableDeployment(target.namespace, target.name))
	}
	client := fake.NewClientset(seed...)

	d := NewDeployer(client, newDynamicFake(establishedCRD("applications.argoproj.io")), manifestDir, WithStrictReadiness())
	require.NoError(t, d.Bootstrap(ctx, environment.Dev))

	for _, ns := range []string{ArgoCDNamespace, IngressNamespace} {
		_, err := client.CoreV1().Namespaces().Get(ctx, ns, metav1.GetOptions{})
		require.NoError(t, err)
	}
}

func TestProposePromotion(t *testing.T) {
	t.Parallel()

	fakeRunner := runner.NewFake()
	fakeRunner.Script("gh pr create", runner.FakeResponse{
		Result: runner.Result{Stdout: "https://github.com/openmf/fineract-gitops/pull/42\n"},
	})

	url, err := ProposePromotion(context.Background(), fakeRunner, environment.UAT)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/openmf/fineract-gitops/pull/42", url)

	require.Len(t, fakeRunner.Calls, 1)
	line := fakeRunner.CallLines()[0]
	assert.Contains(t, line, "--base uat")
	assert.Contains(t, line, "--head develop")
}

func TestProposePromotionIntoDev(t *testing.T) {
	t.Parallel()

	_, err := ProposePromotion(context.Background(), runner.NewFake(), environment.Dev)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}
