/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package sealedsecrets

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/openmf/fineract-deploy/pkg/errors"
	"github.com/openmf/fineract-deploy/pkg/runner"
)

// Store persists backup bundles in an external secret store.
type Store interface {
	Put(ctx context.Context, name string, payload []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}

// awsStore stores bundles in AWS Secrets Manager through the aws CLI. Calls
// are rate-limited; the CLI performs no client-side throttling of its own.
type awsStore struct {
	runner  runner.Runner
	region  string
	limiter *rate.Limiter
}

// NewAWSStore creates a Secrets Manager backed Store. callsPerSecond caps
// the API call rate; zero or negative means 5.
func NewAWSStore(r runner.Runner, region string, callsPerSecond float64) Store {
	if callsPerSecond <= 0 {
		callsPerSecond = 5
	}
	return &awsStore{
		runner:  r,
		region:  region,
		limiter: rate.NewLimiter(rate.Limit(callsPerSecond), 1),
	}
}

// Put creates the secret or, when it already exists, writes a new version.
func (s *awsStore) Put(ctx context.Context, name string, payload []byte) error {
	exists, err := s.exists(ctx, name)
	if err != nil {
		return err
	}

	if exists {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		_, err = s.runner.Run(ctx, runner.Command{
			Name: "aws",
			Args: []string{"secretsmanager", "put-secret-value",
				"--region", s.region,
				"--secret-id", name,
				"--secret-string", string(payload)},
		})
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to update stored bundle "+name, err)
		}
		slog.Info("bundle version stored", "secret", name, "region", s.region)
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err = s.runner.Run(ctx, runner.Command{
		Name: "aws",
		Args: []string{"secretsmanager", "create-secret",
			"--region", s.region,
			"--name", name,
			"--secret-string", string(payload)},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create stored bundle "+name, err)
	}
	slog.Info("bundle created", "secret", name, "region", s.region)
	return nil
}

// Get retrieves the current secret value.
func (s *awsStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := s.runner.Run(ctx, runner.Command{
		Name: "aws",
		Args: []string{"secretsmanager", "get-secret-value",
			"--region", s.region,
			"--secret-id", name,
			"--query", "SecretString",
			"--output", "text"},
	})
	if err != nil {
		if strings.Contains(res.Stderr, "ResourceNotFoundException") {
			return nil, errors.Wrap(errors.ErrCodeNotFound, "no stored bundle named "+name, err)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to retrieve stored bundle "+name, err)
	}
	return []byte(res.Stdout), nil
}

func (s *awsStore) exists(ctx context.Context, name string) (bool, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return false, err
	}

	res, err := s.runner.Run(ctx, runner.Command{
		Name: "aws",
		Args: []string{"secretsmanager", "describe-secret",
			"--region", s.region,
			"--secret-id", name},
	})
	if err != nil {
		if strings.Contains(res.Stderr, "ResourceNotFoundException") {
			return false, nil
		}
		return false, errors.Wrap(errors.ErrCodeInternal, "failed to describe stored bundle "+name, err)
	}
	return true, nil
}
