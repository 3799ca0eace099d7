/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package gitops

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openmf/fineract-deploy/pkg/environment"
	"github.com/openmf/fineract-deploy/pkg/errors"
	"github.com/openmf/fineract-deploy/pkg/runner"
)

// promotionSource maps a target environment to the branch promoted into it.
// Dev has no upstream; changes land there by merge, not promotion.
func promotionSource(env environment.Environment) (string, error) {
	switch env {
	case environment.UAT:
		return environment.Dev.TargetRevision(), nil
	case environment.Production:
		return environment.UAT.TargetRevision(), nil
	default:
		return "", errors.New(errors.ErrCodeInvalidRequest,
			"no promotion path into environment "+env.String())
	}
}

// ProposePromotion opens a pull request promoting the upstream environment's
// branch into the target environment's branch. Returns the PR URL.
func ProposePromotion(ctx context.Context, r runner.Runner, env environment.Environment) (string, error) {
	head, err := promotionSource(env)
	if err != nil {
		return "", err
	}
	base := env.TargetRevision()

	title := fmt.Sprintf("Promote %s to %s", head, env.String())
	body := fmt.Sprintf(
		"Automated promotion of `%s` into `%s` for the %s environment.\n\n"+
			"Merging triggers ArgoCD reconciliation against revision `%s`.",
		head, base, env.String(), base)

	res, err := r.Run(ctx, runner.Command{
		Name: "gh",
		Args: []string{"pr", "create",
			"--base", base,
			"--head", head,
			"--title", title,
			"--body", body},
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeExternalCommand,
			"failed to open promotion pull request", err)
	}

	url := strings.TrimSpace(res.Stdout)
	slog.Info("promotion proposed", "env", env.String(), "base", base, "head", head, "pr", url)
	return url, nil
}
