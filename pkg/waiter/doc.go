// Package waiter provides the single bounded-retry primitive used by every
// readiness check in the pipeline: poll a condition at a fixed interval until
// it reports true or a timeout elapses.
//
// The timeout outcome is typed (TimedOut with a TIMEOUT error code) and
// therefore distinguishable from a condition failure, so callers can decide
// per site whether a slow component aborts the run or merely logs a warning.
package waiter
