// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package env

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/containerd/platforms"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"kmake.sh/cmdfactory"
	"kmake.sh/internal/cli/kmake/utils"
	"kmake.sh/iostreams"
	"kmake.sh/log"
	"kmake.sh/toolchain"
)

type format string

const (
	formatEnv  = format("env")
	formatJSON = format("json")
	formatYAML = format("yaml")
)

func (f format) String() string { return string(f) }

type EnvOptions struct {
	Architecture *string `long:"arch" short:"m" usage:"Architecture to build for"`
	CrossCompile *string `long:"cross-compile" short:"x" usage:"Toolchain prefix, overrides the one of the architecture"`
	Jobs         *int    `long:"jobs" short:"j" usage:"Number of make jobs"`

	output *cmdfactory.EnumFlag[format]
}

func NewCmd() *cobra.Command {
	opts := &EnvOptions{
		output: cmdfactory.NewEnumFlag([]format{formatEnv, formatJSON, formatYAML}, formatEnv),
	}

	cmd, err := cmdfactory.New(opts, cobra.Command{
		Short: "Show the toolchain selection and the build command",
		Use:   "env [FLAGS] [--] [MAKE ARGS...]",
		Args:  cobra.ArbitraryArgs,
		Long: heredoc.Doc(`
			Show the environment and the command line a build with the same flags and
			arguments would use, without running it.
		`),
		Example: heredoc.Doc(`
			# Show the ARM64 toolchain selection
			$ kmake env --arch arm64

			# Machine readable
			$ kmake env -m x86 -o json -- bzImage
		`),
		Annotations: map[string]string{
			cmdfactory.AnnotationHelpGroup: "build",
		},
	})
	if err != nil {
		panic(err)
	}

	cmd.Flags().AddFlag(cmdfactory.VarPF(opts.output, "output", "o", fmt.Sprintf("Output format (%s)", strings.Join(opts.output.Names(), ", "))))
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func (opts *EnvOptions) Run(ctx context.Context, args []string) error {
	runner, err := utils.NewRunner(ctx)
	if err != nil {
		return err
	}

	defer runner.Close()

	plan, err := utils.NewBuildPlan(ctx, runner, toolchain.BuildRequest{
		Architecture: opts.Architecture,
		CrossCompile: opts.CrossCompile,
		Parallelism:  opts.Jobs,
		Args:         args,
	})
	if err != nil {
		return err
	}

	host := toolchain.Host()
	log.G(ctx).
		WithField("cpu", host.Brand).
		WithField("cores", host.LogicalCores).
		WithField("platform", platforms.DefaultString()).
		Debug("host")

	desc := plan.Describe(runner)
	out := iostreams.G(ctx).Out

	f := formatEnv
	if opts.output != nil {
		f = opts.output.Value
	}

	switch f {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(desc)

	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(desc); err != nil {
			return err
		}
		return enc.Close()

	default:
		utils.PrintPlan(ctx, desc)
	}

	return nil
}
