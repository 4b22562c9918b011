// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package build

import (
	"context"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"kmake.sh/cmdfactory"
	"kmake.sh/internal/cli/kmake/utils"
	"kmake.sh/toolchain"
)

type BuildOptions struct {
	Architecture *string `long:"arch" short:"m" usage:"Architecture to build for (x86_64, x86, i386, arm64, aarch64, arm, riscv)"`
	CrossCompile *string `long:"cross-compile" short:"x" usage:"Toolchain prefix, overrides the one of the architecture (empty for a native build)"`
	DryRun       bool    `long:"dry-run" usage:"Print the environment and the command line without building"`
	Jobs         *int    `long:"jobs" short:"j" usage:"Number of make jobs (default is the number of host CPUs)"`
}

// Build the kernel in the current working directory.
func Build(ctx context.Context, opts *BuildOptions, args ...string) error {
	if opts == nil {
		opts = &BuildOptions{}
	}

	return opts.Run(ctx, args)
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&BuildOptions{}, cobra.Command{
		Short: "Build the kernel for any architecture",
		Use:   "build [FLAGS] [--] [MAKE ARGS...]",
		Args:  cobra.ArbitraryArgs,
		Long: heredoc.Doc(`
			Build the kernel in the current working directory.

			The architecture selects the cross-compiler prefix: x86_64 (also x86 and
			i386) uses x86_64-linux-gnu-, arm64 (also aarch64) uses aarch64-linux-gnu-,
			arm uses arm-linux-gnueabihf- and riscv uses riscv64-linux-gnu-.  Without
			an architecture the configured default is built natively.  An unknown
			architecture is passed to make as is, without a cross-compiler.

			Arguments following the flags are passed to make verbatim.  Unless one of
			them is of the form -jN, -j is set to the number of host CPUs.
		`),
		Example: heredoc.Doc(`
			# Build for RISC-V
			$ kmake build --arch riscv defconfig Image

			# Use a different toolchain
			$ kmake build -m arm64 -x aarch64-none-linux-gnu- Image

			# Pass flags to make
			$ kmake build -m x86 -- -k V=1 bzImage
		`),
		Annotations: map[string]string{
			cmdfactory.AnnotationHelpGroup: "build",
		},
	})
	if err != nil {
		panic(err)
	}

	cmd.Flags().SetInterspersed(false)

	return cmd
}

// Request returns the build request made by the options and arguments.
func (opts *BuildOptions) Request(args []string) toolchain.BuildRequest {
	return toolchain.BuildRequest{
		Architecture: opts.Architecture,
		CrossCompile: opts.CrossCompile,
		Parallelism:  opts.Jobs,
		Args:         args,
	}
}

func (opts *BuildOptions) Run(ctx context.Context, args []string) error {
	return utils.Build(ctx, opts.Request(args), opts.DryRun)
}
