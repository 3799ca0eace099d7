/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package gitops

import (
	"context"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"

	"github.com/openmf/fineract-deploy/pkg/defaults"
	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/kube"
	"github.com/openmf/fineract-deploy/pkg/waiter"
)

const (
	// ArgoCDNamespace hosts the ArgoCD control plane.
	ArgoCDNamespace = "argocd"

	// IngressNamespace hosts the ingress-nginx controller.
	IngressNamespace = "ingress-nginx"
)

var crdGVR = schema.GroupVersionResource{
	Group:    "apiextensions.k8s.io",
	Version:  "v1",
	Resource: "customresourcedefinitions",
}

// bootstrapTargets are the deployments whose availability defines a usable
// control plane.
var bootstrapTargets = []struct {
	namespace string
	name      string
}{
	{ArgoCDNamespace, "argocd-server"},
	{ArgoCDNamespace, "argocd-repo-server"},
	{ArgoCDNamespace, "argocd-redis"},
	{ArgoCDNamespace, "argocd-applicationset-controller"},
	{IngressNamespace, "ingress-nginx-controller"},
}

// Deployer installs and reconciles the GitOps control plane and the
// application set it manages.
type Deployer struct {
	client      kube.Interface
	dynamic     dynamic.Interface
	manifestDir string

	// strict makes readiness-wait timeouts during Bootstrap fatal instead
	// of warnings. Production runs set it.
	strict bool
}

// Option configures a Deployer.
type Option func(*Deployer)

// WithStrictReadiness makes Bootstrap fail on any readiness-wait timeout.
func WithStrictReadiness() Option {
	return func(d *Deployer) { d.strict = true }
}

// NewDeployer creates a Deployer rooted at the given manifest directory.
func NewDeployer(client kube.Interface, dyn dynamic.Interface, manifestDir string, opts ...Option) *Deployer {
	d := &Deployer{client: client, dynamic: dyn, manifestDir: manifestDir}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Bootstrap installs ArgoCD and ingress-nginx, then waits for the control
// plane deployments in parallel. By default a wait timeout is logged and
// tolerated, since ArgoCD keeps reconciling after we move on; strict mode
// turns it into a failure.
func (d *Deployer) Bootstrap(ctx context.Context, env environment.Environment) error {
	if err := kube.EnsureNamespace(ctx, d.client, ArgoCDNamespace, nil); err != nil {
		return err
	}
	if err := kube.EnsureNamespace(ctx, d.client, IngressNamespace, nil); err != nil {
		return err
	}

	installed, err := d.ApplyFile(ctx, filepath.Join(d.manifestDir, "install", "argocd-install.yaml"), ArgoCDNamespace)
	if err != nil {
		return err
	}
	slog.Info("argocd manifests applied", "objects", installed)

	// DeployApps creates Application CRs; without an established CRD the
	// apply would fail with a missing-kind error.
	if err := d.waitCRDEstablished(ctx, "applications.argoproj.io"); err != nil {
		return err
	}

	installed, err = d.ApplyFile(ctx, filepath.Join(d.manifestDir, "install", "ingress-nginx.yaml"), IngressNamespace)
	if err != nil {
		return err
	}
	slog.Info("ingress-nginx manifests applied", "objects", installed)

	return d.waitBootstrapReady(ctx, env)
}

// waitCRDEstablished blocks until the named CRD reports the Established
// condition. Timeouts here are fatal regardless of strictness.
func (d *Deployer) waitCRDEstablished(ctx context.Context, name string) error {
	return waiter.WaitReady(ctx, waiter.Probe{
		Desc:     "crd " + name,
		Interval: defaults.PollIntervalFast,
		Timeout:  defaults.BootstrapReadyTimeout,
		Check: func(ctx context.Context) (bool, error) {
			obj, err := d.dynamic.Resource(crdGVR).Get(ctx, name, metav1.GetOptions{})
			if apierrors.IsNotFound(err) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			conditions, _, _ := unstructured.NestedSlice(obj.Object, "status", "conditions")
			for _, c := range conditions {
				condition, ok := c.(map[string]any)
				if !ok {
					continue
				}
				if condition["type"] == "Established" && condition["status"] == "True" {
					return true, nil
				}
			}
			return false, nil
		},
	})
}

func (d *Deployer) waitBootstrapReady(ctx context.Context, env environment.Environment) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, target := range bootstrapTargets {
		g.Go(func() error {
			outcome, err := waiter.Wait(ctx, waiter.Probe{
				Desc:     "deployment " + target.namespace + "/" + target.name,
				Interval: defaults.PollInterval,
				Timeout:  defaults.BootstrapReadyTimeout,
				Check:    kube.DeploymentAvailableCondition(d.client, target.namespace, target.name),
			})
			if outcome == waiter.TimedOut && !d.strict {
				slog.Warn("deployment not ready before timeout, continuing",
					"namespace", target.namespace,
					"deployment", target.name,
					"env", env.String())
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("bootstrap complete", "env", env.String())
	return nil
}
