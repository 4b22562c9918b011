// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package utils

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/containerd/platforms"
	"github.com/sirupsen/logrus"

	"kmake.sh/config"
	"kmake.sh/internal/fancymap"
	"kmake.sh/iostreams"
	"kmake.sh/log"
	"kmake.sh/toolchain"
)

// hostArchitecture is replaced in tests.
var hostArchitecture = func() string {
	return platforms.DefaultSpec().Architecture
}

// Build resolves the request and runs make with the runner selected by the
// configuration.  With dryRun set the plan is printed instead.
func Build(ctx context.Context, req toolchain.BuildRequest, dryRun bool) error {
	runner, err := NewRunner(ctx)
	if err != nil {
		return err
	}

	defer runner.Close()

	return BuildWith(ctx, runner, req, dryRun)
}

// BuildWith is Build with an explicit runner.
func BuildWith(ctx context.Context, runner Runner, req toolchain.BuildRequest, dryRun bool) error {
	plan, err := NewBuildPlan(ctx, runner, req)
	if err != nil {
		return err
	}

	if dryRun {
		PrintPlan(ctx, plan.Describe(runner))
		return nil
	}

	WarnHostMismatch(ctx, plan.Build, runner.Runtime())

	inv := plan.Invocation()
	log.G(ctx).Debug(runner.Cmdline(inv))

	start := time.Now()
	if err := runner.Run(ctx, inv); err != nil {
		return err
	}

	PrintSummary(ctx, plan, runner.Runtime(), time.Since(start))

	return nil
}

// PrintPlan writes the environment and the command line of the plan.
func PrintPlan(ctx context.Context, desc PlanDescription) {
	out := iostreams.G(ctx).Out

	for _, line := range desc.EnvLines() {
		fmt.Fprintln(out, line)
	}

	fmt.Fprintln(out, desc.Cmdline)
}

// WarnHostMismatch warns about a native build for an architecture other than
// the one of the host, which the host compiler cannot produce.
func WarnHostMismatch(ctx context.Context, rb toolchain.ResolvedBuild, runtime string) {
	if !rb.IsNative() || !rb.Architecture.IsKnown() {
		return
	}

	host := hostArchitecture()
	if host == rb.Architecture.Platform() {
		return
	}

	log.G(ctx).
		WithField("arch", rb.Architecture.String()).
		WithField("host", host).
		WithField("runtime", runtime).
		Warn("building without a cross-compiler for a foreign architecture, pass --arch or --cross-compile to select a toolchain")
}

// PrintSummary reports a completed build, as a tree on a terminal and as a log
// entry otherwise.
func PrintSummary(ctx context.Context, plan *BuildPlan, runtime string, took time.Duration) {
	ios := iostreams.G(ctx)

	cache := "disabled"
	if plan.Cache.Enabled() {
		cache = plan.Cache.Dir()
	}

	took = took.Round(time.Millisecond)

	if !ios.IsStdoutTTY() || config.G(ctx).Log.Type == "json" {
		log.G(ctx).WithFields(logrus.Fields{
			"arch":      plan.Build.Architecture.String(),
			"toolchain": plan.Toolchain(),
			"jobs":      plan.Build.Parallelism,
			"cache":     cache,
			"runtime":   runtime,
			"took":      took.String(),
		}).Info("build completed")
		return
	}

	fancymap.PrintFancyMap(ios.Out, "build completed", true,
		fancymap.FancyMapEntry{Key: "arch", Value: plan.Build.Architecture.String()},
		fancymap.FancyMapEntry{Key: "toolchain", Value: plan.Toolchain()},
		fancymap.FancyMapEntry{Key: "jobs", Value: strconv.Itoa(plan.Build.Parallelism)},
		fancymap.FancyMapEntry{Key: "cache", Value: cache, Right: "(" + plan.Cache.MaxSize() + ")"},
		fancymap.FancyMapEntry{Key: "runtime", Value: runtime},
		fancymap.FancyMapEntry{Key: "took", Value: took.String()},
	)
}
