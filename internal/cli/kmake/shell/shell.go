// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package shell

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"kmake.sh/cmdfactory"
	"kmake.sh/config"
	"kmake.sh/internal/cli/kmake/utils"
	"kmake.sh/iostreams"
	"kmake.sh/log"
	"kmake.sh/toolchain"
)

// DefaultShell is executed when no command is given.
const DefaultShell = "bash"

type ShellOptions struct {
	Architecture *string `long:"arch" short:"m" usage:"Architecture to select the toolchain of"`
	CrossCompile *string `long:"cross-compile" short:"x" usage:"Toolchain prefix, overrides the one of the architecture"`
	Jobs         *int    `long:"jobs" short:"j" usage:"Number of make jobs set in MAKEFLAGS"`
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&ShellOptions{}, cobra.Command{
		Short: "Open a shell in the toolchain container",
		Use:   "shell [FLAGS] [--] [COMMAND...]",
		Args:  cobra.ArbitraryArgs,
		Long: heredoc.Doc(`
			Open a shell in the toolchain container with the source tree mounted and
			ARCH, CROSS_COMPILE, MAKEFLAGS and the compiler cache configured as for a
			build.  A command given as argument is executed instead of the shell.
		`),
		Example: heredoc.Doc(`
			# Open a shell with the ARM64 toolchain selected
			$ kmake shell --arch arm64

			# Run a single command
			$ kmake shell -m riscv -- make menuconfig
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

// Invocation returns the shell invocation for the resolved build.
func Invocation(rb toolchain.ResolvedBuild, cacheEnv map[string]string, argv []string, interactive bool) utils.Invocation {
	env := make(map[string]string, len(rb.Environment)+len(cacheEnv)+1)
	for k, v := range cacheEnv {
		env[k] = v
	}
	for k, v := range rb.Environment {
		env[k] = v
	}
	env["MAKEFLAGS"] = fmt.Sprintf("-j%d", rb.Parallelism)

	if len(argv) == 0 {
		argv = []string{DefaultShell}
	}

	return utils.Invocation{
		Argv:        argv,
		Env:         env,
		Interactive: interactive,
	}
}

func (opts *ShellOptions) Run(ctx context.Context, args []string) error {
	runner, err := utils.NewRunner(ctx)
	if err != nil {
		return err
	}

	defer runner.Close()

	if runner.Runtime() != config.RuntimeDocker {
		log.G(ctx).Warn("the shell runs on the host with the local runtime")
	}

	rb := utils.NewSelector(ctx).Resolve(ctx, toolchain.BuildRequest{
		Architecture: opts.Architecture,
		CrossCompile: opts.CrossCompile,
		Parallelism:  opts.Jobs,
	})

	cache, err := utils.NewCache(ctx, runner)
	if err != nil {
		return err
	}

	ios := iostreams.G(ctx)
	inv := Invocation(rb, cache.Env(), args, ios.CanPrompt())

	log.G(ctx).Debug(runner.Cmdline(inv))

	if inv.Interactive && runner.Runtime() == config.RuntimeDocker {
		restore, err := ios.MakeRaw()
		if err != nil {
			return fmt.Errorf("could not put the terminal in raw mode: %w", err)
		}

		defer func() {
			if err := restore(); err != nil {
				log.G(ctx).WithError(err).Debug("could not restore terminal")
			}
		}()
	}

	return runner.Run(ctx, inv)
}
