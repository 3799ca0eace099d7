/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
	"k8s.io/client-go/dynamic"

	"github.com/openmf/fineract-deploy/pkg/config"
	"github.com/openmf/fineract-deploy/pkg/gitops"
	"github.com/openmf/fineract-deploy/pkg/kube"
	"github.com/openmf/fineract-deploy/pkg/serializer"
)

// writeResult serializes a command's result per the --output and --format
// flags.
func writeResult(ctx context.Context, cmd *cli.Command, v any) error {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return fmt.Errorf("unknown output format: %q", cmd.String("format"))
	}
	ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()
	return ser.Serialize(ctx, v)
}

// clusterClients builds the typed and dynamic Kubernetes clients from the
// resolved kubeconfig.
func clusterClients(cfg *config.Config) (kube.Interface, dynamic.Interface, error) {
	client, _, err := kube.BuildClient(cfg.Kubeconfig)
	if err != nil {
		return nil, nil, err
	}
	dyn, err := kube.BuildDynamicClient(cfg.Kubeconfig)
	if err != nil {
		return nil, nil, err
	}
	return client, dyn, nil
}

// newGitopsDeployer wires a Deployer for the environment's strictness.
func newGitopsDeployer(cfg *config.Config, strict bool) (*gitops.Deployer, kube.Interface, error) {
	client, dyn, err := clusterClients(cfg)
	if err != nil {
		return nil, nil, err
	}
	var opts []gitops.Option
	if strict {
		opts = append(opts, gitops.WithStrictReadiness())
	}
	return gitops.NewDeployer(client, dyn, cfg.ManifestDir, opts...), client, nil
}
