/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package jobs

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	yamlutil "k8s.io/apimachinery/pkg/util/yaml"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/utils/ptr"

	"github.com/openmf/fineract-deploy/pkg/defaults"
	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/errors"
	"github.com/openmf/fineract-deploy/pkg/kube"
)

// Loader describes one data-loader Job. Wave ordering mirrors the ArgoCD
// sync waves the manifests carry, so standalone runs load data in the same
// dependency order as a full sync.
type Loader struct {
	Name string
	Wave int
}

// loaders in dependency order. Accounting depends on products; entities,
// transactions and calendar build on both.
var loaders = []Loader{
	{"system-foundation", 5},
	{"products", 10},
	{"accounting", 21},
	{"entities", 30},
	{"transactions", 35},
	{"calendar", 40},
}

// Result records one loader's outcome.
type Result struct {
	Name     string        `json:"name" yaml:"name"`
	Wave     int           `json:"wave" yaml:"wave"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Status   string        `json:"status" yaml:"status"`
	Message  string        `json:"message,omitempty" yaml:"message,omitempty"`
}

// Runner executes the data-loader Jobs sequentially by sync wave. Each run
// deletes any stale Job of the same name first so loaders always start from
// their manifest, not a leftover.
type Runner struct {
	client      kube.Interface
	manifestDir string
	timeout     time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout overrides the per-job completion timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// NewRunner creates a Runner rooted at the given manifest directory.
func NewRunner(client kube.Interface, manifestDir string, opts ...Option) *Runner {
	r := &Runner{
		client:      client,
		manifestDir: manifestDir,
		timeout:     defaults.JobCompletionTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every loader in wave order and stops at the first failure.
// Results for completed loaders are returned alongside the error so callers
// can report how far the sequence got.
func (r *Runner) Run(ctx context.Context, env environment.Environment) ([]Result, error) {
	ordered := make([]Loader, len(loaders))
	copy(ordered, loaders)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Wave < ordered[j].Wave })

	namespace := env.Namespace()
	results := make([]Result, 0, len(ordered))

	for _, loader := range ordered {
		start := time.Now()
		slog.Info("loader starting", "job", loader.Name, "wave", loader.Wave, "namespace", namespace)

		err := r.runOne(ctx, env, loader)
		result := Result{
			Name:     loader.Name,
			Wave:     loader.Wave,
			Duration: time.Since(start),
			Status:   "succeeded",
		}
		if err != nil {
			result.Status = "failed"
			result.Message = err.Error()
			results = append(results, result)
			return results, errors.Wrap(errors.ErrCodeInternal,
				"loader "+loader.Name+" failed, aborting sequence", err)
		}
		results = append(results, result)
		slog.Info("loader finished", "job", loader.Name, "duration", result.Duration)
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, env environment.Environment, loader Loader) error {
	job, err := r.loadJob(env, loader)
	if err != nil {
		return err
	}
	namespace := env.Namespace()

	if err := r.deleteStale(ctx, namespace, job.Name); err != nil {
		return err
	}

	if _, err := r.client.BatchV1().Jobs(namespace).Create(ctx, job, metav1.CreateOptions{}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create job "+job.Name, err)
	}

	return r.waitForCompletion(ctx, namespace, job.Name)
}

// loadJob parses the loader's manifest into a typed Job.
func (r *Runner) loadJob(env environment.Environment, loader Loader) (*batchv1.Job, error) {
	path := filepath.Join(r.manifestDir, env.String(), "jobs", loader.Name+".yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, "job manifest not found: "+path, err)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read job manifest "+path, err)
	}

	var job batchv1.Job
	decoder := yamlutil.NewYAMLOrJSONDecoder(bytes.NewReader(raw), 4096)
	if err := decoder.Decode(&job); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "malformed job manifest "+path, err)
	}
	if job.Name == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "job manifest "+path+" lacks a name")
	}
	return &job, nil
}

// deleteStale removes a previous Job of the same name and waits for it to
// disappear. Re-creating over a live Job would be rejected by the API.
func (r *Runner) deleteStale(ctx context.Context, namespace, name string) error {
	err := r.client.BatchV1().Jobs(namespace).Delete(ctx, name, metav1.DeleteOptions{
		PropagationPolicy: ptr.To(metav1.DeletePropagationBackground),
	})
	if apierrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to delete stale job "+name, err)
	}

	err = wait.PollUntilContextTimeout(ctx, 200*time.Millisecond, 30*time.Second, true,
		func(ctx context.Context) (bool, error) {
			_, err := r.client.BatchV1().Jobs(namespace).Get(ctx, name, metav1.GetOptions{})
			if apierrors.IsNotFound(err) {
				return true, nil
			}
			return false, err
		})
	if err != nil {
		return errors.Wrap(errors.ErrCodeTimeout, "stale job "+name+" not removed", err)
	}
	return nil
}

// waitForCompletion watches the Job until it completes or fails. A Get
// before the watch covers the case where the Job finished before the watch
// was established.
func (r *Runner) waitForCompletion(ctx context.Context, namespace, name string) error {
	job, err := r.client.BatchV1().Jobs(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to get job "+name, err)
	}
	if done, err := jobFinished(job); done {
		return err
	}

	watcher, err := r.client.BatchV1().Jobs(namespace).Watch(ctx, metav1.ListOptions{
		FieldSelector: "metadata.name=" + name,
		Watch:         true,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to watch job "+name, err)
	}
	defer watcher.Stop()

	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	for {
		select {
		case <-timeoutCtx.Done():
			return errors.New(errors.ErrCodeTimeout,
				fmt.Sprintf("job %s did not complete within %v", name, r.timeout))

		case event, ok := <-watcher.ResultChan():
			if !ok {
				return errors.New(errors.ErrCodeInternal, "watch channel closed for job "+name)
			}
			if event.Type == watch.Error {
				return errors.New(errors.ErrCodeInternal,
					fmt.Sprintf("watch error for job %s: %v", name, event.Object))
			}
			job, ok := event.Object.(*batchv1.Job)
			if !ok {
				continue
			}
			if done, err := jobFinished(job); done {
				return err
			}
		}
	}
}

// jobFinished reports whether the Job reached a terminal condition, with a
// non-nil error when that condition is failure.
func jobFinished(job *batchv1.Job) (bool, error) {
	for _, condition := range job.Status.Conditions {
		if condition.Status != corev1.ConditionTrue {
			continue
		}
		switch condition.Type {
		case batchv1.JobComplete:
			return true, nil
		case batchv1.JobFailed:
			return true, errors.New(errors.ErrCodeInternal,
				"job "+job.Name+" failed: "+condition.Message)
		}
	}
	return false, nil
}
