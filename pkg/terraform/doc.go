// Package terraform drives the infrastructure-as-code stages in their fixed
// order: init, validate, plan, interactive confirmation (default deny),
// apply, output. The apply stage is the only step of the pipeline with
// externally billable, hard-to-undo effects, which is why it alone sits
// behind a confirmation gate.
//
// Parsed outputs are the sole hand-off channel to downstream configuration
// steps; there is no other state transfer mechanism.
package terraform
