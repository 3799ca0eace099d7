/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/gitops"
)

func deployment(namespace, name string, available bool) *appsv1.Deployment {
	status := corev1.ConditionFalse
	if available {
		status = corev1.ConditionTrue
	}
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name},
		Status: appsv1.DeploymentStatus{
			Conditions: []appsv1.DeploymentCondition{
				{Type: appsv1.DeploymentAvailable, Status: status},
			},
		},
	}
}

func service(namespace, name string) *corev1.Service {
	return &corev1.Service{ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name}}
}

func ingress(namespace, name string) *networkingv1.Ingress {
	return &networkingv1.Ingress{ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name}}
}

func healthyEnvironment(namespace string) []runtime.Object {
	return []runtime.Object{
		deployment(namespace, "fineract-server", true),
		deployment(namespace, "fineract-web-app", true),
		deployment(namespace, "keycloak", true),
		service(namespace, "fineract-server"),
		service(namespace, "fineract-web-app"),
		ingress(namespace, "fineract"),
	}
}

func applicationCR(name, sync, health string) *unstructured.Unstructured {
	return &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "argoproj.io/v1alpha1",
			"kind":       "Application",
			"metadata": map[string]any{
				"name":      name,
				"namespace": gitops.ArgoCDNamespace,
			},
			"status": map[string]any{
				"sync":   map[string]any{"status": sync},
				"health": map[string]any{"status": health},
			},
		},
	}
}

func newDeployer(client *fake.Clientset, apps ...runtime.Object) *gitops.Deployer {
	scheme := runtime.NewScheme()
	dyn := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(scheme,
		map[schema.GroupVersionResource]string{
			gitops.ApplicationGVR: "ApplicationList",
		}, apps...)
	return gitops.NewDeployer(client, dyn, "argocd")
}

func TestVerifyQuickHealthy(t *testing.T) {
	t.Parallel()

	client := fake.NewClientset(healthyEnvironment("fineract-dev")...)
	report, err := New(client, nil).Verify(context.Background(), environment.Dev, Quick)
	require.NoError(t, err)

	assert.Equal(t, Healthy, report.Summary.Status)
	assert.Equal(t, report.Summary.Total, report.Summary.Passed)
	assert.Zero(t, report.Summary.Failed)
	assert.Equal(t, "dev", report.Environment)
}

func TestVerifyQuickCriticalFailure(t *testing.T) {
	t.Parallel()

	// Everything except the core server deployment.
	objects := healthyEnvironment("fineract-uat")[1:]
	client := fake.NewClientset(objects...)

	report, err := New(client, nil).Verify(context.Background(), environment.UAT, Quick)
	require.NoError(t, err)

	assert.Equal(t, Failed, report.Summary.Status)
	assert.Equal(t, 1, report.Summary.Failed)

	var failed Check
	for _, c := range report.Checks {
		if c.Status == CheckFailed {
			failed = c
		}
	}
	assert.Equal(t, "deployment.fineract-server", failed.Name)
	assert.Equal(t, Critical, failed.Severity)
}

func TestVerifyQuickAdvisoryDegrades(t *testing.T) {
	t.Parallel()

	client := fake.NewClientset(
		deployment("fineract-dev", "fineract-server", true),
		deployment("fineract-dev", "fineract-web-app", false),
		deployment("fineract-dev", "keycloak", true),
		service("fineract-dev", "fineract-server"),
		service("fineract-dev", "fineract-web-app"),
		ingress("fineract-dev", "fineract"),
	)

	report, err := New(client, nil).Verify(context.Background(), environment.Dev, Quick)
	require.NoError(t, err)
	assert.Equal(t, Degraded, report.Summary.Status)
}

func TestVerifyFullSyncedApplications(t *testing.T) {
	t.Parallel()

	client := fake.NewClientset(healthyEnvironment("fineract-dev")...)
	deployer := newDeployer(client,
		applicationCR("fineract-backend", "Synced", "Healthy"),
		applicationCR("fineract-web", "Synced", "Healthy"),
	)

	report, err := New(client, deployer).Verify(context.Background(), environment.Dev, Full)
	require.NoError(t, err)

	assert.Equal(t, Healthy, report.Summary.Status)
	assert.Len(t, report.Checks, 8)
}

func TestVerifyFullUnsyncedApplication(t *testing.T) {
	t.Parallel()

	client := fake.NewClientset(healthyEnvironment("fineract-production")...)
	deployer := newDeployer(client,
		applicationCR("fineract-backend", "OutOfSync", "Degraded"),
	)

	v := New(client, deployer, WithSyncWindow(50*time.Millisecond))
	report, err := v.Verify(context.Background(), environment.Production, Full)
	require.NoError(t, err)

	assert.Equal(t, Failed, report.Summary.Status)

	var appCheck Check
	for _, c := range report.Checks {
		if c.Name == "application.fineract-backend" {
			appCheck = c
		}
	}
	assert.Equal(t, CheckFailed, appCheck.Status)
	assert.Contains(t, appCheck.Detail, "OutOfSync")
}

func TestVerifyFullNoApplications(t *testing.T) {
	t.Parallel()

	client := fake.NewClientset(healthyEnvironment("fineract-dev")...)
	deployer := newDeployer(client)

	v := New(client, deployer, WithSyncWindow(50*time.Millisecond))
	report, err := v.Verify(context.Background(), environment.Dev, Full)
	require.NoError(t, err)
	assert.Equal(t, Failed, report.Summary.Status)
}

func TestVerifyFullWithoutDeployerSkips(t *testing.T) {
	t.Parallel()

	client := fake.NewClientset(healthyEnvironment("fineract-dev")...)
	report, err := New(client, nil).Verify(context.Background(), environment.Dev, Full)
	require.NoError(t, err)

	assert.Equal(t, Degraded, report.Summary.Status)
	assert.Equal(t, 1, report.Summary.Skipped)
}

func TestAggregateEmptyReport(t *testing.T) {
	t.Parallel()

	report := &Report{}
	report.aggregate(time.Now())
	assert.Equal(t, Healthy, report.Summary.Status)
	assert.Zero(t, report.Summary.Total)
}
