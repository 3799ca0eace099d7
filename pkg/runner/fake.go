/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"context"
	"strings"
	"sync"
)

// Fake is a Runner for tests. It records every invocation and replies from a
// scripted response table keyed by "name arg0 arg1 ...". Unmatched commands
// succeed with empty output unless DefaultErr is set.
type Fake struct {
	mu sync.Mutex

	// Responses maps a command-line prefix to its scripted outcome.
	Responses map[string]FakeResponse

	// MissingTools are names LookPath reports as absent.
	MissingTools []string

	// DefaultErr, when set, is returned for any unmatched command.
	DefaultErr error

	// Calls records every command, in order.
	Calls []Command
}

// FakeResponse is a scripted reply for a Fake runner.
type FakeResponse struct {
	Result Result
	Err    error
}

// NewFake returns an empty Fake runner.
func NewFake() *Fake {
	return &Fake{Responses: map[string]FakeResponse{}}
}

// Script registers a response for commands whose rendered command line starts
// with the given prefix.
func (f *Fake) Script(prefix string, resp FakeResponse) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[prefix] = resp
	return f
}

// Run implements Runner.
func (f *Fake) Run(_ context.Context, cmd Command) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, cmd)

	line := strings.Join(append([]string{cmd.Name}, cmd.Args...), " ")
	for prefix, resp := range f.Responses {
		if strings.HasPrefix(line, prefix) {
			return resp.Result, resp.Err
		}
	}
	if f.DefaultErr != nil {
		return Result{ExitCode: 1}, f.DefaultErr
	}
	return Result{}, nil
}

// LookPath implements Runner.
func (f *Fake) LookPath(name string) error {
	for _, missing := range f.MissingTools {
		if missing == name {
			return &missingToolError{name: name}
		}
	}
	return nil
}

// CallLines renders recorded calls as command lines, easing assertions.
func (f *Fake) CallLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	lines := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		lines = append(lines, strings.Join(append([]string{c.Name}, c.Args...), " "))
	}
	return lines
}

type missingToolError struct{ name string }

func (e *missingToolError) Error() string {
	return "exec: " + e.name + ": executable file not found in $PATH"
}
