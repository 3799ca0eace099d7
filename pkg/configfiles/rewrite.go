/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package configfiles

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/openmf/fineract-deploy/pkg/errors"
)

// Placeholder is the literal token environments embed before the first
// load-balancer hostname is known.
const Placeholder = "LOADBALANCER_HOSTNAME_PLACEHOLDER"

// elbHostnamePattern matches AWS ELB DNS names, the shape ingress hostnames
// take on EKS.
var elbHostnamePattern = regexp.MustCompile(`[a-zA-Z0-9][a-zA-Z0-9.-]*\.elb\.[a-z0-9-]+\.amazonaws\.com`)

// FileResult records what happened to one file during a rewrite.
type FileResult struct {
	Path     string `json:"path" yaml:"path"`
	Modified bool   `json:"modified" yaml:"modified"`
	Skipped  bool   `json:"skipped" yaml:"skipped"`
	Missing  bool   `json:"missing" yaml:"missing"`
}

// Report aggregates a rewrite across the file set.
type Report struct {
	Files    []FileResult `json:"files" yaml:"files"`
	Modified int          `json:"modified" yaml:"modified"`
	Skipped  int          `json:"skipped" yaml:"skipped"`
	Missing  int          `json:"missing" yaml:"missing"`
}

// Rewriter replaces an embedded external endpoint across a fixed set of
// configuration files.
type Rewriter struct {
	// DryRun reports what would change without writing.
	DryRun bool
}

// Rewrite replaces occurrences of the placeholder token, the explicit old
// hostname (when given), or any pattern-matched ELB hostname with newHost
// in every file of the set. Files containing none of these are skipped
// silently; the operation is idempotent.
func (r *Rewriter) Rewrite(files []string, oldHost, newHost string) (*Report, error) {
	if strings.TrimSpace(newHost) == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "new hostname cannot be empty")
	}

	report := &Report{}
	for _, path := range files {
		result, err := r.rewriteFile(path, oldHost, newHost)
		if err != nil {
			return nil, err
		}
		report.Files = append(report.Files, result)
		switch {
		case result.Modified:
			report.Modified++
		case result.Missing:
			report.Missing++
		default:
			report.Skipped++
		}
	}

	slog.Info("config rewrite finished",
		"newHost", newHost,
		"modified", report.Modified,
		"skipped", report.Skipped,
		"missing", report.Missing,
		"dryRun", r.DryRun)
	return report, nil
}

func (r *Rewriter) rewriteFile(path, oldHost, newHost string) (FileResult, error) {
	result := FileResult{Path: path}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// A listed file that does not exist is reported, not fatal:
		// environments differ in which overlays they carry.
		result.Missing = true
		slog.Debug("config file absent", "path", path)
		return result, nil
	}
	if err != nil {
		return result, errors.Wrap(errors.ErrCodeInternal, "failed to read "+path, err)
	}

	content := string(raw)
	updated := strings.ReplaceAll(content, Placeholder, newHost)
	if oldHost != "" && oldHost != newHost {
		updated = strings.ReplaceAll(updated, oldHost, newHost)
	}
	updated = replaceELBHostnames(updated, newHost)

	if updated == content {
		result.Skipped = true
		slog.Debug("config file unchanged", "path", path)
		return result, nil
	}

	result.Modified = true
	if r.DryRun {
		slog.Info("would update config file", "path", path)
		return result, nil
	}

	if err := atomicWrite(path, []byte(updated)); err != nil {
		return result, err
	}
	slog.Info("config file updated", "path", path)
	return result, nil
}

// replaceELBHostnames swaps any ELB-shaped hostname that is not already the
// target for newHost.
func replaceELBHostnames(content, newHost string) string {
	return elbHostnamePattern.ReplaceAllStringFunc(content, func(match string) string {
		if match == newHost {
			return match
		}
		return newHost
	})
}

// atomicWrite replaces path's content via a rename from a temp file in the
// same directory, preserving the original mode.
func atomicWrite(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create temp file for "+path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeInternal, "failed to write temp file for "+path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeInternal, "failed to chmod temp file for "+path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeInternal, "failed to close temp file for "+path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(errors.ErrCodeInternal, "failed to replace "+path, err)
	}
	return nil
}
