/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package gitops

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	yamlutil "k8s.io/apimachinery/pkg/util/yaml"

	"github.com/openmf/fineract-deploy/pkg/errors"
)

// fieldManager identifies this tool in server-side-apply field ownership.
const fieldManager = "findeploy"

// clusterScopedKinds are the kinds in our manifest set that take no
// namespace.
var clusterScopedKinds = map[string]bool{
	"Namespace":                      true,
	"ClusterRole":                    true,
	"ClusterRoleBinding":             true,
	"CustomResourceDefinition":       true,
	"IngressClass":                   true,
	"PriorityClass":                  true,
	"StorageClass":                   true,
	"ValidatingWebhookConfiguration": true,
	"MutatingWebhookConfiguration":   true,
}

// loadManifests parses a multi-document YAML file into unstructured objects.
// Empty documents are skipped.
func loadManifests(path string) ([]*unstructured.Unstructured, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, "manifest file not found: "+path, err)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read manifest "+path, err)
	}

	decoder := yamlutil.NewYAMLOrJSONDecoder(bytes.NewReader(raw), 4096)
	var objects []*unstructured.Unstructured
	for {
		var doc map[string]any
		if err := decoder.Decode(&doc); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "malformed manifest in "+path, err)
		}
		if len(doc) == 0 {
			continue
		}
		obj := &unstructured.Unstructured{Object: doc}
		if obj.GetKind() == "" || obj.GetAPIVersion() == "" {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				"manifest document in "+path+" lacks kind or apiVersion")
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// applyObject server-side-applies one object. Re-applying an unchanged
// object is a no-op on the server, which is what makes whole-file applies
// safely repeatable.
func (d *Deployer) applyObject(ctx context.Context, obj *unstructured.Unstructured, defaultNamespace string) error {
	gvk := obj.GroupVersionKind()
	gvr, _ := meta.UnsafeGuessKindToResource(gvk)

	opts := metav1.ApplyOptions{FieldManager: fieldManager, Force: true}

	if clusterScopedKinds[gvk.Kind] {
		_, err := d.dynamic.Resource(gvr).Apply(ctx, obj.GetName(), obj, opts)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal,
				"failed to apply "+gvk.Kind+"/"+obj.GetName(), err)
		}
		return nil
	}

	namespace := obj.GetNamespace()
	if namespace == "" {
		namespace = defaultNamespace
		obj.SetNamespace(namespace)
	}
	_, err := d.dynamic.Resource(gvr).Namespace(namespace).Apply(ctx, obj.GetName(), obj, opts)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			"failed to apply "+gvk.Kind+"/"+obj.GetName()+" in "+namespace, err)
	}
	return nil
}

// ApplyFile applies every document in a manifest file. Objects that carry no
// namespace of their own land in defaultNamespace. Returns the number of
// objects applied.
func (d *Deployer) ApplyFile(ctx context.Context, path, defaultNamespace string) (int, error) {
	objects, err := loadManifests(path)
	if err != nil {
		return 0, err
	}
	for _, obj := range objects {
		if err := d.applyObject(ctx, obj, defaultNamespace); err != nil {
			return 0, err
		}
	}
	slog.Debug("manifest file applied", "path", path, "objects", len(objects))
	return len(objects), nil
}

// ApplyDir applies every .yaml file in a directory, in name order. A missing
// directory is an error; an empty one applies nothing.
func (d *Deployer) ApplyDir(ctx context.Context, dir, defaultNamespace string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, "bad manifest glob for "+dir, err)
	}
	if _, err := os.Stat(dir); err != nil {
		return 0, errors.Wrap(errors.ErrCodeNotFound, "manifest directory not found: "+dir, err)
	}
	sort.Strings(matches)

	applied := 0
	for _, path := range matches {
		n, err := d.ApplyFile(ctx, path, defaultNamespace)
		if err != nil {
			return applied, err
		}
		applied += n
	}
	return applied, nil
}
