/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package kube

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

// Interface is an alias for kubernetes.Interface to allow easier mocking in
// tests via fake.NewClientset().
type Interface = kubernetes.Interface

// BuildClient creates a Kubernetes client from the given kubeconfig file.
// An empty path enables automatic discovery: KUBECONFIG, ~/.kube/config,
// then the in-cluster service account. Deployment steps rebuild the client
// rather than cache it, since configure rewrites the kubeconfig mid-run.
func BuildClient(kubeconfig string) (*kubernetes.Clientset, *rest.Config, error) {
	config, err := BuildRestConfig(kubeconfig)
	if err != nil {
		return nil, nil, err
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	return client, config, nil
}

// BuildRestConfig resolves a rest.Config from the given kubeconfig path,
// falling back to KUBECONFIG, ~/.kube/config, then in-cluster configuration.
func BuildRestConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig == "" {
		kubeconfig = os.Getenv("KUBECONFIG")

		if kubeconfig == "" {
			kubeconfig = filepath.Join(homedir.HomeDir(), ".kube", "config")
			if _, err := os.Stat(kubeconfig); os.IsNotExist(err) {
				kubeconfig = ""
			}
		}
	}

	if kubeconfig == "" {
		config, err := rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get in-cluster config: %w", err)
		}
		return config, nil
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build kube config from %s: %w", kubeconfig, err)
	}
	return config, nil
}

// BuildDynamicClient creates a dynamic client for custom resources (ArgoCD
// Applications, SealedSecrets) from the given kubeconfig path.
func BuildDynamicClient(kubeconfig string) (dynamic.Interface, error) {
	config, err := BuildRestConfig(kubeconfig)
	if err != nil {
		return nil, err
	}

	client, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}
	return client, nil
}
