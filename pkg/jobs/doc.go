/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

// Package jobs runs the Fineract data-loader Jobs sequentially in sync-wave
// order, re-creating each from its manifest and waiting on the batch API for
// completion. The sequence aborts at the first failed loader since later
// waves depend on the data earlier ones load.
package jobs
