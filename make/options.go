// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package make

import (
	"fmt"
	"sort"
	"strings"

	"kmake.sh/exec"
)

// MakeOptions holds the variables and targets of a GNU Make invocation and how
// it is executed on the host.
type MakeOptions struct {
	targets []string
	vars    map[string]string
	eopts   []exec.ExecOption
}

type MakeOption func(mo *MakeOptions) error

// NewMakeOptions applies the provided options to an empty *MakeOptions.
func NewMakeOptions(mopts ...MakeOption) (*MakeOptions, error) {
	mo := &MakeOptions{}

	for _, o := range mopts {
		if err := o(mo); err != nil {
			return nil, fmt.Errorf("could not apply option: %w", err)
		}
	}

	return mo, nil
}

// Vars returns the serialized Make variable assignments, sorted by name,
// followed by the targets and any passthrough arguments.
func (mo *MakeOptions) Vars() []string {
	keys := make([]string, 0, len(mo.vars))
	for k := range mo.vars {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	vars := make([]string, 0, len(keys)+len(mo.targets))
	for _, k := range keys {
		vars = append(vars, k+"="+mo.vars[k])
	}

	return append(vars, mo.targets...)
}

// WithVar sets a variable and its value before invoking make.
func WithVar(key, val string) MakeOption {
	return func(mo *MakeOptions) error {
		if key == "" || strings.ContainsAny(key, "= \t") {
			return fmt.Errorf("invalid make variable name: %q", key)
		}

		if mo.vars == nil {
			mo.vars = make(map[string]string)
		}

		mo.vars[key] = val

		return nil
	}
}

// WithVars sets all variables of the map.
func WithVars(vars map[string]string) MakeOption {
	return func(mo *MakeOptions) error {
		for k, v := range vars {
			if err := WithVar(k, v)(mo); err != nil {
				return err
			}
		}

		return nil
	}
}

// WithTarget appends targets, or any argument which is passed verbatim after
// the variables, to the invocation.
func WithTarget(target ...string) MakeOption {
	return func(mo *MakeOptions) error {
		mo.targets = append(mo.targets, target...)
		return nil
	}
}

// WithExecOptions sets the options used when executing make on the host.
func WithExecOptions(eopts ...exec.ExecOption) MakeOption {
	return func(mo *MakeOptions) error {
		mo.eopts = append(mo.eopts, eopts...)
		return nil
	}
}
