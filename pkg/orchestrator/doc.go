/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

// Package orchestrator sequences the deployment pipeline: each step carries
// a failure policy, progress is written to structured logs and a per-run
// log file, and the final summary tells the operator what ran, what broke,
// and which commands resume the work.
package orchestrator
