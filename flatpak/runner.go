// Copyright 2026 The Devcade Authors
// SPDX-License-Identifier: Apache-2.0

package flatpak

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Command describes one external command invocation. Nil writers
// discard the corresponding stream.
type Command struct {
	// Name is the binary to invoke (resolved via PATH).
	Name string

	// Args are the command arguments, not including the binary name.
	Args []string

	// Dir is the working directory. Empty means the caller's.
	Dir string

	// Stdout and Stderr receive the command's output streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Runner executes external commands. Production code uses ExecRunner;
// tests substitute a fake so no processes are spawned.
type Runner interface {
	// Run executes the command and blocks until it exits. A non-zero
	// exit is reported as *ExitError; any other failure (binary
	// missing, spawn refused) is returned as-is.
	Run(ctx context.Context, command Command) error
}

// ExitError reports a command that ran to completion and exited
// non-zero. Callers that treat exit status as a signal (the installed
// probe) check for it with errors.As.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.Code)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, command Command) error {
	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	cmd.Dir = command.Dir
	cmd.Stdout = command.Stdout
	cmd.Stderr = command.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("running %s: %w", command.Name, err)
	}
	return nil
}
