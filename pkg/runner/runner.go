/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/openmf/fineract-deploy/pkg/errors"
)

// Command describes a single external CLI invocation.
type Command struct {
	// Name is the executable name, resolved against PATH.
	Name string
	// Args are passed verbatim, never through a shell.
	Args []string
	// Dir is the working directory; empty means the process working dir.
	Dir string
	// Env entries are appended to the inherited environment.
	Env []string
	// Stdin, when non-empty, is fed to the process.
	Stdin string
	// Stream, when set, receives combined live output in addition to
	// the captured Result. Used for long-running terraform stages.
	Stream io.Writer
}

// Result captures the outcome of a completed command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands. The interface exists so orchestration
// code can be tested without the real CLIs installed.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	LookPath(name string) error
}

// New returns a Runner backed by os/exec.
func New() Runner {
	return &execRunner{}
}

type execRunner struct{}

func (r *execRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return Result{}, errors.New(errors.ErrCodeInvalidRequest, "command name cannot be empty")
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec // args come from typed callers, not user shell input
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdout, stderr bytes.Buffer
	if cmd.Stream != nil {
		c.Stdout = io.MultiWriter(&stdout, cmd.Stream)
		c.Stderr = io.MultiWriter(&stderr, cmd.Stream)
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	slog.Debug("executing command", "name", cmd.Name, "args", cmd.Args, "dir", cmd.Dir)

	err := c.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if c.ProcessState != nil {
		result.ExitCode = c.ProcessState.ExitCode()
	} else {
		// Process never started (binary missing, bad dir).
		result.ExitCode = -1
	}

	if err != nil {
		// Surface context expiry as TIMEOUT so polling callers can
		// distinguish it from a genuine command failure.
		if ctx.Err() != nil {
			return result, errors.Wrap(errors.ErrCodeTimeout,
				cmd.Name+" canceled or timed out", ctx.Err())
		}
		return result, errors.WrapWithContext(errors.ErrCodeExternalCommand,
			cmd.Name+" exited non-zero", err,
			map[string]any{
				"exitCode": result.ExitCode,
				"stderr":   truncate(result.Stderr, 2048),
			})
	}

	return result, nil
}

func (r *execRunner) LookPath(name string) error {
	_, err := exec.LookPath(name)
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
