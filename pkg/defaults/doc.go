/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

// Package defaults provides centralized configuration constants for findeploy.
//
// This package defines timeout values, polling intervals, and other
// configuration defaults used across the codebase. Centralizing these values
// ensures consistency and makes tuning easier.
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/openmf/fineract-deploy/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.TerraformApplyTimeout)
//	defer cancel()
package defaults
