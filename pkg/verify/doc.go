/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

// Package verify runs read-only health checks against a deployed Fineract
// environment: workload availability, service and ingress presence, and in
// full mode ArgoCD application sync and health convergence. Checks carry a
// severity so an advisory wobble degrades the report without failing it.
package verify
