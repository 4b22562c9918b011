// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package exec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"kmake.sh/internal/errs"
	"kmake.sh/log"
)

type Process struct {
	executable *Executable
	opts       *ExecOptions
	cmd        *exec.Cmd
}

// NewProcess prepares a process to be executed from a given binary name and
// optional execution options
func NewProcess(bin string, args []string, eopts ...ExecOption) (*Process, error) {
	executable, err := NewExecutable(bin, nil, args...)
	if err != nil {
		return nil, err
	}

	return NewProcessFromExecutable(executable, eopts...)
}

// NewProcessFromExecutable prepares a process to be executed from a given
// *Executable object and optional execution options
func NewProcessFromExecutable(executable *Executable, eopts ...ExecOption) (*Process, error) {
	if executable == nil {
		return nil, fmt.Errorf("cannot prepare process without executable")
	}

	opts, err := NewExecOptions(eopts...)
	if err != nil {
		return nil, err
	}

	return &Process{
		executable: executable,
		opts:       opts,
	}, nil
}

// Cmdline returns the full command line to be executed
func (e *Process) Cmdline() string {
	return QuoteArgs(e.executable.Argv())
}

// Start the process.  Cancelling the context terminates the process.
func (e *Process) Start(ctx context.Context) error {
	e.cmd = exec.CommandContext(ctx, e.executable.bin, e.executable.Args()...)
	e.cmd.Cancel = func() error {
		return e.cmd.Process.Signal(syscall.SIGTERM)
	}

	e.cmd.Stdout = e.opts.stdout
	e.cmd.Stderr = e.opts.stderr
	if e.cmd.Stderr == nil {
		e.cmd.Stderr = e.opts.stdout
	}

	e.cmd.Stdin = e.opts.stdin
	e.cmd.Dir = e.opts.dir

	// Add any set environmental variables including the host's
	e.cmd.Env = append(os.Environ(), e.opts.env...)

	log.G(ctx).
		WithField("env", e.opts.env).
		Debug(e.Cmdline())

	return e.cmd.Start()
}

// Wait for the process to complete.  A non-zero exit status is returned as an
// *errs.ExitError.
func (e *Process) Wait() error {
	if e.cmd == nil {
		return fmt.Errorf("process has not yet started cannot wait")
	}

	err := e.cmd.Wait()
	code := e.cmd.ProcessState.ExitCode()

	for _, cb := range e.opts.callbacks {
		cb(code)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code < 0 {
			// Terminated by a signal.
			code = 128
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				code += int(status.Signal())
			}
		}

		return &errs.ExitError{Code: code}
	}

	return err
}

// StartAndWait starts the process and waits for it to exit
func (e *Process) StartAndWait(ctx context.Context) error {
	if err := e.Start(ctx); err != nil {
		return err
	}

	return e.Wait()
}

// Signal sends a signal to the running process.  If this fails, for example if
// the process is not running, this will return an error.
func (e *Process) Signal(signal syscall.Signal) error {
	if e.cmd == nil || e.cmd.Process == nil {
		return fmt.Errorf("process has not yet started")
	}

	return e.cmd.Process.Signal(signal)
}

// Kill sends a SIGKILL to the running process.
func (e *Process) Kill() error {
	return e.Signal(syscall.SIGKILL)
}
