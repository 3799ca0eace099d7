/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package gitops

import (
	"context"
	"log/slog"
	"path/filepath"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/errors"
)

// ApplicationGVR locates ArgoCD Application custom resources.
var ApplicationGVR = schema.GroupVersionResource{
	Group:    "argoproj.io",
	Version:  "v1alpha1",
	Resource: "applications",
}

// AppState is the sync and health status of one Application.
type AppState struct {
	Name   string `json:"name" yaml:"name"`
	Sync   string `json:"sync" yaml:"sync"`
	Health string `json:"health" yaml:"health"`
}

// Synced reports whether the Application is both synced and healthy.
func (s AppState) Synced() bool {
	return s.Sync == "Synced" && s.Health == "Healthy"
}

// DeployApps applies the environment's app-of-apps Application and then
// every per-application manifest explicitly. The explicit pass guarantees
// each Application exists at least once even when the controller lags on
// reconciling the parent. Returns the number of objects applied.
func (d *Deployer) DeployApps(ctx context.Context, env environment.Environment) (int, error) {
	root := filepath.Join(d.manifestDir, env.String())

	applied, err := d.ApplyFile(ctx, filepath.Join(root, "app-of-apps.yaml"), ArgoCDNamespace)
	if err != nil {
		return 0, err
	}

	children, err := d.ApplyDir(ctx, filepath.Join(root, "apps"), ArgoCDNamespace)
	if err != nil {
		return applied, err
	}

	slog.Info("applications deployed",
		"env", env.String(),
		"parent", applied,
		"children", children)
	return applied + children, nil
}

// AppStatus reads one Application's sync and health status from the cluster.
func (d *Deployer) AppStatus(ctx context.Context, name string) (*AppState, error) {
	obj, err := d.dynamic.Resource(ApplicationGVR).Namespace(ArgoCDNamespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, "failed to get application "+name, err)
	}
	state := appState(obj)
	return &state, nil
}

// ListAppStates reads every Application's sync and health status.
func (d *Deployer) ListAppStates(ctx context.Context) ([]AppState, error) {
	list, err := d.dynamic.Resource(ApplicationGVR).Namespace(ArgoCDNamespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to list applications", err)
	}
	states := make([]AppState, 0, len(list.Items))
	for _, item := range list.Items {
		states = append(states, appState(&item))
	}
	return states, nil
}

func appState(obj *unstructured.Unstructured) AppState {
	sync, _, _ := unstructured.NestedString(obj.Object, "status", "sync", "status")
	health, _, _ := unstructured.NestedString(obj.Object, "status", "health", "status")
	if sync == "" {
		sync = "Unknown"
	}
	if health == "" {
		health = "Unknown"
	}
	return AppState{Name: obj.GetName(), Sync: sync, Health: health}
}
