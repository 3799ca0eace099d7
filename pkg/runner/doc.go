// Package runner wraps external CLI execution (terraform, aws, kubeseal, gh)
// behind a small interface so orchestration code stays testable without the
// real tools installed.
//
// Commands are executed directly, never through a shell, and failures carry
// structured error codes: TIMEOUT when the context expired, EXTERNAL_COMMAND
// with exit code and captured stderr otherwise.
package runner
