// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package toolchain

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"kmake.sh/log"
)

// DefaultArchitecture is used when a request does not name one.
const DefaultArchitecture = "arm64"

var jobsArg = regexp.MustCompile(`^-j([0-9]+)$`)

// Selector translates a BuildRequest into a ResolvedBuild.
type Selector struct {
	defaultArch string
	parallelism func() int
}

// SelectorOption is a function that modifies a Selector.
type SelectorOption func(*Selector)

// WithDefaultArchitecture sets the architecture used when the request does not
// name one.  An empty name keeps the current default.
func WithDefaultArchitecture(name string) SelectorOption {
	return func(s *Selector) {
		if name != "" {
			s.defaultArch = name
		}
	}
}

// WithParallelismFunc sets the function which returns the number of jobs used
// when the request does not specify any.
func WithParallelismFunc(fn func() int) SelectorOption {
	return func(s *Selector) {
		if fn != nil {
			s.parallelism = fn
		}
	}
}

// NewSelector returns a Selector which defaults to arm64 and the host's
// processing unit count.
func NewSelector(opts ...SelectorOption) *Selector {
	s := &Selector{
		defaultArch: DefaultArchitecture,
		parallelism: HostParallelism,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// DefaultArch returns the name of the architecture selected for requests
// which do not name one.
func (s *Selector) DefaultArch() string {
	return s.defaultArch
}

// Resolve returns the toolchain selection for the request.  It never fails:
// an unrecognized architecture is reported as a warning and passed through
// without a cross-compiler prefix.
func (s *Selector) Resolve(ctx context.Context, req BuildRequest) ResolvedBuild {
	var arch Architecture
	var prefix string

	if req.Architecture == nil || *req.Architecture == "" {
		arch = ParseArchitecture(s.defaultArch)
	} else {
		arch = ParseArchitecture(*req.Architecture)
		if !arch.IsKnown() {
			log.G(ctx).
				WithField("arch", arch.String()).
				Warn("unrecognized architecture, building without a cross-compiler")
		}

		prefix = arch.CrossCompile()
	}

	if req.CrossCompile != nil {
		prefix = *req.CrossCompile
	}

	args := make([]string, len(req.Args))
	copy(args, req.Args)

	jobs, found := JobsFromArgs(args)
	if !found {
		if req.Parallelism != nil && *req.Parallelism > 0 {
			jobs = *req.Parallelism
		} else {
			jobs = s.parallelism()
		}

		args = append(args, fmt.Sprintf("-j%d", jobs))
	}

	env := map[string]string{
		EnvArch: arch.String(),
	}
	if prefix != "" {
		env[EnvCrossCompile] = prefix
	}

	return ResolvedBuild{
		Architecture: arch,
		CrossCompile: prefix,
		Parallelism:  jobs,
		Args:         args,
		Environment:  env,
	}
}

// JobsFromArgs returns the job count carried by the first `-j<digits>`
// argument.  The split form `-j N` is not recognized.
func JobsFromArgs(args []string) (int, bool) {
	for _, arg := range args {
		m := jobsArg.FindStringSubmatch(arg)
		if m == nil {
			continue
		}

		jobs, err := strconv.Atoi(m[1])
		if err != nil {
			// Overflowing digit strings still count as a parallelism flag.
			return 0, true
		}

		return jobs, true
	}

	return 0, false
}

var defaultSelector = NewSelector()

// Resolve resolves the request using the default Selector.
func Resolve(ctx context.Context, req BuildRequest) ResolvedBuild {
	return defaultSelector.Resolve(ctx, req)
}
