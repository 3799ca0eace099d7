/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/openmf/fineract-deploy/pkg/config"
	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/logging"
)

const (
	name           = "findeploy"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

var (
	envFlag = &cli.StringFlag{
		Name:     "env",
		Aliases:  []string{"e"},
		Required: true,
		Usage:    "Target environment (dev, uat, production)",
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   "yaml",
		Usage:   "Output format (yaml, json)",
	}

	kubeconfigFlag = &cli.StringFlag{
		Name:    "kubeconfig",
		Sources: cli.EnvVars("FINDEPLOY_KUBECONFIG", "KUBECONFIG"),
		Usage:   "Path to kubeconfig file (default: client-go discovery)",
	}

	regionFlag = &cli.StringFlag{
		Name:    "region",
		Sources: cli.EnvVars("FINDEPLOY_REGION"),
		Usage:   "Cloud region for secret-store and cluster operations",
	}
)

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Fineract GitOps deployment orchestrator",
		Version: version,
		Description: fmt.Sprintf(`findeploy - Fineract GitOps deployment orchestrator

Version: %s
Commit:  %s
Built:   %s

Orchestrates deployment of the Fineract platform onto Kubernetes:
Terraform provisioning, ArgoCD bootstrap, app-of-apps deployment,
sync/health verification, sealed-secrets key lifecycle, hostname
configuration, and data-loader job execution.

Every command targets one environment (dev, uat, production); the
environment decides the namespace, the Git revision ArgoCD tracks, and
how strictly failures are treated.`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
				Usage:   "Logging verbosity (debug, info, warn, error)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			deployCmd(),
			provisionCmd(),
			configureCmd(),
			bootstrapCmd(),
			appsCmd(),
			verifyCmd(),
			secretsCmd(),
			hostnameCmd(),
			jobsCmd(),
			preflightCmd(),
		},
	}
}

// Run executes the CLI. It is called by main and owns process exit.
func Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down gracefully...")
		cancel()
	}()

	if err := rootCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// envFromCmd parses and validates the --env flag. Validation happens before
// any cloud or cluster call.
func envFromCmd(cmd *cli.Command) (environment.Environment, error) {
	return environment.Parse(cmd.String("env"))
}

// loadConfig merges ambient FINDEPLOY_* settings with per-command flag
// overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if v := cmd.String("kubeconfig"); v != "" {
		cfg.Kubeconfig = v
	}
	if v := cmd.String("region"); v != "" {
		cfg.Region = v
	}
	return cfg, nil
}
