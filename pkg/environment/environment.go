/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package environment

import (
	"fmt"
	"strings"

	"github.com/openmf/fineract-deploy/pkg/errors"
)

// Environment identifies a deployment target. It is validated before any
// side-effecting call is made.
type Environment string

const (
	// Dev is the development environment.
	Dev Environment = "dev"
	// UAT is the user acceptance testing environment.
	UAT Environment = "uat"
	// Production is the production environment.
	Production Environment = "production"
)

// All returns every valid environment, in promotion order.
func All() []Environment {
	return []Environment{Dev, UAT, Production}
}

// Parse validates the given name and returns the matching Environment.
// Anything outside the closed set is rejected with INVALID_REQUEST.
func Parse(name string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(name))) {
	case Dev:
		return Dev, nil
	case UAT:
		return UAT, nil
	case Production:
		return Production, nil
	default:
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid environment %q, must be one of: dev, uat, production", name),
			map[string]any{"input": name})
	}
}

// String implements fmt.Stringer.
func (e Environment) String() string {
	return string(e)
}

// Namespace returns the Kubernetes namespace hosting the Fineract workloads
// for this environment.
func (e Environment) Namespace() string {
	return "fineract-" + string(e)
}

// TargetRevision returns the Git revision ArgoCD tracks for this environment.
func (e Environment) TargetRevision() string {
	switch e {
	case Production:
		return "main"
	case UAT:
		return "uat"
	default:
		return "develop"
	}
}

// TFVarsFile returns the Terraform variable file parameterizing this
// environment.
func (e Environment) TFVarsFile() string {
	return fmt.Sprintf("environments/%s.tfvars", e)
}

// SecretPrefix returns the secret-store path prefix under which backups and
// credentials for this environment are stored.
func (e Environment) SecretPrefix() string {
	return "fineract/" + string(e)
}

// IsProduction reports whether this environment warrants the strict
// failure policy (bootstrap and verify timeouts are fatal rather than
// warnings).
func (e Environment) IsProduction() bool {
	return e == Production
}
