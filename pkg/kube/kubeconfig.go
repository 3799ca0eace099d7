/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package kube

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/client-go/tools/clientcmd"

	"github.com/openmf/fineract-deploy/pkg/errors"
)

// RewriteServerAddress replaces the loopback control-plane address in a raw
// kubeconfig with the externally reachable one. K3s advertises 127.0.0.1 in
// the kubeconfig it writes on the server node; a copy taken off-host is
// unusable without this substitution.
func RewriteServerAddress(raw []byte, externalAddr string) ([]byte, error) {
	if strings.TrimSpace(externalAddr) == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "external address cannot be empty")
	}

	cfg, err := clientcmd.Load(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to parse kubeconfig", err)
	}

	rewritten := false
	for name, cluster := range cfg.Clusters {
		if strings.Contains(cluster.Server, "127.0.0.1") || strings.Contains(cluster.Server, "localhost") {
			cluster.Server = replaceHost(cluster.Server, externalAddr)
			cfg.Clusters[name] = cluster
			rewritten = true
		}
	}

	if !rewritten {
		// Already pointing at a reachable address; hand it back as-is.
		return raw, nil
	}

	out, err := clientcmd.Write(*cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to serialize kubeconfig", err)
	}
	return out, nil
}

// WriteKubeconfig persists a kubeconfig to path with owner-only permissions,
// creating parent directories as needed.
func WriteKubeconfig(path string, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create kubeconfig directory", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to write kubeconfig", err)
	}
	return nil
}

// replaceHost swaps the host portion of a server URL, preserving scheme and
// port.
func replaceHost(server, newHost string) string {
	// server looks like https://127.0.0.1:6443
	scheme := ""
	rest := server
	if idx := strings.Index(server, "://"); idx >= 0 {
		scheme = server[:idx+3]
		rest = server[idx+3:]
	}

	port := ""
	if idx := strings.LastIndex(rest, ":"); idx >= 0 {
		port = rest[idx:]
	}

	return fmt.Sprintf("%s%s%s", scheme, newHost, port)
}
