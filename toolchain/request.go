// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package toolchain

import (
	"fmt"
	"sort"
)

const (
	EnvArch         = "ARCH"
	EnvCrossCompile = "CROSS_COMPILE"
)

// BuildRequest is the raw selection made by the user.  A nil field has not
// been provided.
type BuildRequest struct {
	Architecture *string
	CrossCompile *string
	Parallelism  *int
	Args         []string
}

// ResolvedBuild is the outcome of resolving a BuildRequest.
type ResolvedBuild struct {
	// Architecture is the selected architecture.
	Architecture Architecture

	// CrossCompile is the toolchain prefix, empty for a native build.
	CrossCompile string

	// Parallelism is the number of make jobs.
	Parallelism int

	// Args are the make arguments, always containing exactly one `-j<N>`
	// argument added by the selector or carried over from the request.
	Args []string

	// Environment contains ARCH and, unless empty, CROSS_COMPILE.
	Environment map[string]string
}

// Env returns the environment as a sorted list of KEY=VALUE assignments.
func (rb ResolvedBuild) Env() []string {
	keys := make([]string, 0, len(rb.Environment))
	for k := range rb.Environment {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, rb.Environment[k]))
	}

	return env
}

// IsNative returns true when no cross-compiler prefix was selected.
func (rb ResolvedBuild) IsNative() bool {
	return rb.CrossCompile == ""
}

// String is a pointer helper for populating BuildRequest.
func String(s string) *string {
	return &s
}

// Int is a pointer helper for populating BuildRequest.
func Int(i int) *int {
	return &i
}
