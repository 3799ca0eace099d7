/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package kube

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/openmf/fineract-deploy/pkg/defaults"
	"github.com/openmf/fineract-deploy/pkg/waiter"
)

// DeploymentAvailable reports whether the named deployment exists and has
// the Available condition true. A missing deployment is "not yet", not an
// error, so this can back a readiness probe.
func DeploymentAvailable(ctx context.Context, client Interface, namespace, name string) (bool, error) {
	dep, err := client.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	for _, cond := range dep.Status.Conditions {
		if cond.Type == appsv1.DeploymentAvailable && cond.Status == corev1.ConditionTrue {
			return true, nil
		}
	}
	return false, nil
}

// DeploymentReadyReplicas returns the ready replica count, or zero when the
// deployment does not exist.
func DeploymentReadyReplicas(ctx context.Context, client Interface, namespace, name string) (int32, error) {
	dep, err := client.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return dep.Status.ReadyReplicas, nil
}

// PodsRunning reports whether at least one pod matching the selector is in
// the Running phase.
func PodsRunning(ctx context.Context, client Interface, namespace, selector string) (bool, error) {
	pods, err := client.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return false, err
	}
	for _, pod := range pods.Items {
		if pod.Status.Phase == corev1.PodRunning {
			return true, nil
		}
	}
	return false, nil
}

// ServiceExists reports whether the named Service exists.
func ServiceExists(ctx context.Context, client Interface, namespace, name string) (bool, error) {
	_, err := client.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IngressExists reports whether the named Ingress exists.
func IngressExists(ctx context.Context, client Interface, namespace, name string) (bool, error) {
	_, err := client.NetworkingV1().Ingresses(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LoadBalancerHostname returns the hostname assigned to a LoadBalancer
// Service, or empty while assignment is pending.
func LoadBalancerHostname(ctx context.Context, client Interface, namespace, name string) (string, error) {
	svc, err := client.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	for _, ing := range svc.Status.LoadBalancer.Ingress {
		if ing.Hostname != "" {
			return ing.Hostname, nil
		}
		if ing.IP != "" {
			return ing.IP, nil
		}
	}
	return "", nil
}

// NodesReady reports whether every registered node has the Ready condition
// true and at least min nodes exist.
func NodesReady(ctx context.Context, client Interface, min int) (bool, error) {
	nodes, err := client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return false, err
	}
	if len(nodes.Items) < min {
		return false, nil
	}
	for _, node := range nodes.Items {
		ready := false
		for _, cond := range node.Status.Conditions {
			if cond.Type == corev1.NodeReady && cond.Status == corev1.ConditionTrue {
				ready = true
				break
			}
		}
		if !ready {
			return false, nil
		}
	}
	return true, nil
}

// APIServerHealthy reports whether the API server answers a version probe.
func APIServerHealthy(_ context.Context, client Interface) (bool, error) {
	if _, err := client.Discovery().ServerVersion(); err != nil {
		// Unreachable control plane is a "not yet" during provisioning.
		return false, nil
	}
	return true, nil
}

// WaitClusterReady blocks until the API server answers and at least minNodes
// worker nodes report Ready. A freshly provisioned control plane can lag the
// first client call by minutes, so this runs between kubeconfig derivation
// and the first cluster write.
func WaitClusterReady(ctx context.Context, client Interface, minNodes int) error {
	if err := waiter.WaitReady(ctx, waiter.Probe{
		Desc:     "api server health",
		Interval: defaults.PollIntervalFast,
		Timeout:  defaults.APIServerReadyTimeout,
		Check:    APIServerCondition(client),
	}); err != nil {
		return err
	}
	return waiter.WaitReady(ctx, waiter.Probe{
		Desc:     "node readiness",
		Interval: defaults.PollInterval,
		Timeout:  defaults.NodesReadyTimeout,
		Check:    NodesReadyCondition(client, minNodes),
	})
}

// DeploymentAvailableCondition adapts DeploymentAvailable to a waiter
// condition.
func DeploymentAvailableCondition(client Interface, namespace, name string) waiter.Condition {
	return func(ctx context.Context) (bool, error) {
		return DeploymentAvailable(ctx, client, namespace, name)
	}
}

// NodesReadyCondition adapts NodesReady to a waiter condition.
func NodesReadyCondition(client Interface, min int) waiter.Condition {
	return func(ctx context.Context) (bool, error) {
		return NodesReady(ctx, client, min)
	}
}

// APIServerCondition adapts APIServerHealthy to a waiter condition.
func APIServerCondition(client Interface) waiter.Condition {
	return func(ctx context.Context) (bool, error) {
		return APIServerHealthy(ctx, client)
	}
}

// LoadBalancerHostnameCondition waits for a LoadBalancer hostname assignment
// and captures it through dst.
func LoadBalancerHostnameCondition(client Interface, namespace, name string, dst *string) waiter.Condition {
	return func(ctx context.Context) (bool, error) {
		hostname, err := LoadBalancerHostname(ctx, client, namespace, name)
		if err != nil {
			return false, err
		}
		if hostname == "" {
			return false, nil
		}
		*dst = hostname
		return true, nil
	}
}
