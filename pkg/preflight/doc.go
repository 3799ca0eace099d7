// Package preflight verifies the preconditions of a deployment run before
// any side effect: required CLIs on PATH, valid cloud credentials, and a
// reachable cluster API server.
//
// Failures are enumerated in full (every missing tool in one message) and
// always fatal; there is no retry for a missing precondition.
package preflight
