// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package make

import (
	"context"
	"slices"
	"strings"

	"kmake.sh/exec"
)

const DefaultBinaryName = "make"

// Make is a prepared GNU Make invocation.
type Make struct {
	opts *MakeOptions
	exe  *exec.Executable
}

// New prepares a GNU Make invocation.
func New(mopts ...MakeOption) (*Make, error) {
	opts, err := NewMakeOptions(mopts...)
	if err != nil {
		return nil, err
	}

	exe, err := exec.NewExecutable(DefaultBinaryName, *opts, opts.Vars()...)
	if err != nil {
		return nil, err
	}

	return &Make{opts: opts, exe: exe}, nil
}

// Argv returns the full command line, starting with the make binary.
func (m *Make) Argv() []string {
	return m.exe.Argv()
}

// String returns the command line as a single string.
func (m *Make) String() string {
	return strings.Join(m.Argv(), " ")
}

// Execute runs make on the host and waits for it to exit.  eopts are applied
// after those given with WithExecOptions.  A failing build is returned as an
// *errs.ExitError.
func (m *Make) Execute(ctx context.Context, eopts ...exec.ExecOption) error {
	process, err := exec.NewProcessFromExecutable(m.exe, append(slices.Clone(m.opts.eopts), eopts...)...)
	if err != nil {
		return err
	}

	return process.StartAndWait(ctx)
}
