/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

// Package sealedsecrets manages the Bitnami sealed-secrets sealing keys
// across cluster recreations: extracting active keys into a versioned
// bundle, storing and fetching the bundle through AWS Secrets Manager,
// restoring keys into a fresh cluster, and validating that restored keys
// can still decrypt the SealedSecret resources the repository carries.
//
// Losing the sealing keys makes every committed SealedSecret permanently
// undecryptable, so Backup treats an empty extraction as a fatal error
// rather than writing an empty bundle over a good one.
package sealedsecrets
