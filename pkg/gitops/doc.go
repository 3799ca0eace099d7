/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

// Package gitops installs the ArgoCD and ingress-nginx control plane and
// reconciles the Fineract application set against it. All manifest applies
// use server-side apply through the dynamic client, so re-running any
// operation against an unchanged manifest set is a no-op.
package gitops
