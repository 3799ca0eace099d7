package kube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func availableDeployment(namespace, name string, ready int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Namespace: namespace, Name: name},
		Status: appsv1.DeploymentStatus{
			ReadyReplicas: ready,
			Conditions: []appsv1.DeploymentCondition{
				{Type: appsv1.DeploymentAvailable, Status: corev1.ConditionTrue},
			},
		},
	}
}

func TestDeploymentAvailable(t *testing.T) {
	client := fake.NewClientset(availableDeployment("argocd", "argocd-server", 1))

	ok, err := DeploymentAvailable(t.Context(), client, "argocd", "argocd-server")
	require.NoError(t, err)
	assert.True(t, ok)

	// missing deployment is "not yet", not an error
	ok, err = DeploymentAvailable(t.Context(), client, "argocd", "argocd-repo-server")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeploymentReadyReplicas(t *testing.T) {
	client := fake.NewClientset(availableDeployment("kube-system", "sealed-secrets-controller", 2))

	n, err := DeploymentReadyReplicas(t.Context(), client, "kube-system", "sealed-secrets-controller")
	require.NoError(t, err)
	assert.Equal(t, int32(2), n)

	n, err = DeploymentReadyReplicas(t.Context(), client, "kube-system", "absent")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPodsRunning(t *testing.T) {
	client := fake.NewClientset(
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{
				Namespace: "fineract-dev",
				Name:      "fineract-server-0",
				Labels:    map[string]string{"app": "fineract-server"},
			},
			Status: corev1.PodStatus{Phase: corev1.PodRunning},
		},
		&corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{
				Namespace: "fineract-dev",
				Name:      "fineract-batch-0",
				Labels:    map[string]string{"app": "fineract-batch"},
			},
			Status: corev1.PodStatus{Phase: corev1.PodPending},
		},
	)

	ok, err := PodsRunning(t.Context(), client, "fineract-dev", "app=fineract-server")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = PodsRunning(t.Context(), client, "fineract-dev", "app=fineract-batch")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = PodsRunning(t.Context(), client, "fineract-dev", "app=missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServiceAndIngressExistence(t *testing.T) {
	client := fake.NewClientset(
		&corev1.Service{ObjectMeta: metav1.ObjectMeta{Namespace: "fineract-dev", Name: "fineract-server"}},
		&networkingv1.Ingress{ObjectMeta: metav1.ObjectMeta{Namespace: "fineract-dev", Name: "fineract-web"}},
	)

	ok, err := ServiceExists(t.Context(), client, "fineract-dev", "fineract-server")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ServiceExists(t.Context(), client, "fineract-dev", "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IngressExists(t.Context(), client, "fineract-dev", "fineract-web")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IngressExists(t.Context(), client, "fineract-dev", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadBalancerHostname(t *testing.T) {
	client := fake.NewClientset(
		&corev1.Service{
			ObjectMeta: metav1.ObjectMeta{Namespace: "ingress-nginx", Name: "ingress-nginx-controller"},
			Status: corev1.ServiceStatus{
				LoadBalancer: corev1.LoadBalancerStatus{
					Ingress: []corev1.LoadBalancerIngress{
						{Hostname: "abc.elb.us-east-2.amazonaws.com"},
					},
				},
			},
		},
		&corev1.Service{
			ObjectMeta: metav1.ObjectMeta{Namespace: "ingress-nginx", Name: "pending"},
		},
	)

	hostname, err := LoadBalancerHostname(t.Context(), client, "ingress-nginx", "ingress-nginx-controller")
	require.NoError(t, err)
	assert.Equal(t, "abc.elb.us-east-2.amazonaws.com", hostname)

	hostname, err = LoadBalancerHostname(t.Context(), client, "ingress-nginx", "pending")
	require.NoError(t, err)
	assert.Empty(t, hostname)
}

func TestNodesReady(t *testing.T) {
	readyNode := func(name string) *corev1.Node {
		return &corev1.Node{
			ObjectMeta: metav1.ObjectMeta{Name: name},
			Status: corev1.NodeStatus{
				Conditions: []corev1.NodeCondition{
					{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
				},
			},
		}
	}

	client := fake.NewClientset(readyNode("node-1"), readyNode("node-2"))

	ok, err := NodesReady(t.Context(), client, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	// more nodes required than registered
	ok, err = NodesReady(t.Context(), client, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWaitClusterReady(t *testing.T) {
	client := fake.NewClientset(&corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: "node-1"},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
			},
		},
	})

	// fake discovery always answers, so both probes pass on the first poll
	require.NoError(t, WaitClusterReady(t.Context(), client, 1))
}

func TestLoadBalancerHostnameCondition(t *testing.T) {
	client := fake.NewClientset(&corev1.Service{
		ObjectMeta: metav1.ObjectMeta{Namespace: "ingress-nginx", Name: "ingress-nginx-controller"},
		Status: corev1.ServiceStatus{
			LoadBalancer: corev1.LoadBalancerStatus{
				Ingress: []corev1.LoadBalancerIngress{{Hostname: "xyz.elb.us-east-2.amazonaws.com"}},
			},
		},
	})

	var got string
	cond := LoadBalancerHostnameCondition(client, "ingress-nginx", "ingress-nginx-controller", &got)

	done, err := cond(t.Context())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, "xyz.elb.us-east-2.amazonaws.com", got)
}
