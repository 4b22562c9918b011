// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package utils

import (
	"context"
	"fmt"
	osexec "os/exec"
	"sort"

	"github.com/mattn/go-shellwords"

	"kmake.sh/ccache"
	"kmake.sh/config"
	"kmake.sh/log"
	gnumake "kmake.sh/make"
	"kmake.sh/toolchain"
)

// lookPath is replaced in tests.
var lookPath = osexec.LookPath

// BuildPlan is a resolved build ready to be handed to a Runner.
type BuildPlan struct {
	Build toolchain.ResolvedBuild
	Cache *ccache.Cache
	Make  *gnumake.Make
}

// NewSelector returns a toolchain selector defaulting to the configured
// architecture.
func NewSelector(ctx context.Context) *toolchain.Selector {
	return toolchain.NewSelector(
		toolchain.WithDefaultArchitecture(config.G(ctx).DefaultArch),
	)
}

// MakeFlags returns the configured `make_flags` split into arguments.
func MakeFlags(ctx context.Context) ([]string, error) {
	flags := config.G(ctx).MakeFlags
	if flags == "" {
		return nil, nil
	}

	args, err := shellwords.Parse(flags)
	if err != nil {
		return nil, fmt.Errorf("could not parse make flags %q: %w", flags, err)
	}

	return args, nil
}

// NewCache returns the compiler cache configured for builds executed by the
// runner.
func NewCache(ctx context.Context, runner Runner) (*ccache.Cache, error) {
	cfg := config.G(ctx)

	disabled := cfg.Cache.Disabled
	if !disabled && runner.Runtime() == config.RuntimeLocal {
		if _, err := lookPath(ccache.Binary); err != nil {
			log.G(ctx).Warn("ccache is not installed, building without the compiler cache")
			disabled = true
		}
	}

	return ccache.New(
		ccache.WithDisabled(disabled),
		ccache.WithDir(runner.Path(cfg.Cache.Dir)),
		ccache.WithMaxSize(cfg.Cache.MaxSize),
		ccache.WithCompressLevel(cfg.Cache.CompressLevel),
	)
}

// NewBuildPlan resolves the request and prepares the make invocation.  The
// configured make flags precede the arguments of the request.
func NewBuildPlan(ctx context.Context, runner Runner, req toolchain.BuildRequest) (*BuildPlan, error) {
	flags, err := MakeFlags(ctx)
	if err != nil {
		return nil, err
	}

	if len(flags) > 0 {
		req.Args = append(flags, req.Args...)
	}

	rb := NewSelector(ctx).Resolve(ctx, req)

	cache, err := NewCache(ctx, runner)
	if err != nil {
		return nil, err
	}

	m, err := gnumake.New(
		gnumake.WithVars(cache.MakeVars(rb.CrossCompile)),
		gnumake.WithTarget(rb.Args...),
	)
	if err != nil {
		return nil, err
	}

	return &BuildPlan{
		Build: rb,
		Cache: cache,
		Make:  m,
	}, nil
}

// Env returns the environment of the build: the toolchain selection and the
// compiler cache settings.
func (p *BuildPlan) Env() map[string]string {
	env := make(map[string]string, len(p.Build.Environment)+4)

	for k, v := range p.Cache.Env() {
		env[k] = v
	}

	for k, v := range p.Build.Environment {
		env[k] = v
	}

	return env
}

// Invocation returns the make invocation of the plan.
func (p *BuildPlan) Invocation() Invocation {
	return Invocation{
		Argv: p.Make.Argv(),
		Env:  p.Env(),
		Make: p.Make,
	}
}

// Toolchain returns a human readable description of the selected toolchain.
func (p *BuildPlan) Toolchain() string {
	if p.Build.IsNative() {
		return "native"
	}

	return p.Build.CrossCompile
}

// PlanDescription is the serializable form of a plan, see `kmake env`.
type PlanDescription struct {
	Architecture string            `json:"arch" yaml:"arch"`
	CrossCompile string            `json:"cross_compile" yaml:"cross_compile"`
	Jobs         int               `json:"jobs" yaml:"jobs"`
	Runtime      string            `json:"runtime" yaml:"runtime"`
	Cache        bool              `json:"cache" yaml:"cache"`
	Env          map[string]string `json:"env" yaml:"env"`
	Argv         []string          `json:"argv" yaml:"argv"`
	Cmdline      string            `json:"cmdline" yaml:"cmdline"`
}

// Describe returns the plan as executed by the runner.
func (p *BuildPlan) Describe(runner Runner) PlanDescription {
	inv := p.Invocation()

	return PlanDescription{
		Architecture: p.Build.Architecture.String(),
		CrossCompile: p.Build.CrossCompile,
		Jobs:         p.Build.Parallelism,
		Runtime:      runner.Runtime(),
		Cache:        p.Cache.Enabled(),
		Env:          inv.Env,
		Argv:         inv.Argv,
		Cmdline:      runner.Cmdline(inv),
	}
}

// EnvLines returns the environment as sorted KEY=VALUE lines.
func (d PlanDescription) EnvLines() []string {
	keys := make([]string, 0, len(d.Env))
	for k := range d.Env {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+d.Env[k])
	}

	return lines
}
