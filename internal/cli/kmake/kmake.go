// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package kmake

import (
	"context"
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/rancher/wrangler/pkg/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kmake.sh/cmdfactory"
	"kmake.sh/config"
	"kmake.sh/internal/cli"
	kitversion "kmake.sh/internal/version"
	"kmake.sh/iostreams"
	"kmake.sh/log"

	"kmake.sh/internal/cli/kmake/build"
	"kmake.sh/internal/cli/kmake/cache"
	kmakeconfig "kmake.sh/internal/cli/kmake/config"
	"kmake.sh/internal/cli/kmake/env"
	"kmake.sh/internal/cli/kmake/image"
	"kmake.sh/internal/cli/kmake/shell"
	"kmake.sh/internal/cli/kmake/version"
	"kmake.sh/toolchain"
)

type KMakeOptions struct{}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&KMakeOptions{}, cobra.Command{
		Short: "Build the Linux kernel with containerized cross-compilation toolchains",
		Use:   "kmake [FLAGS] SUBCOMMAND",
		Long: heredoc.Docf(`
			Build the Linux kernel with containerized cross-compilation toolchains.

			kmake runs make inside a container image carrying the x86_64, ARM64, ARM
			and RISC-V toolchains, with the kernel source tree mounted as working
			directory, the compiler cache enabled and ARCH, CROSS_COMPILE and -j set.

			Version: %s`, kitversion.Version()),
		Example: heredoc.Doc(`
			# Configure and build an ARM64 kernel in the current directory
			$ kmake arm64 defconfig
			$ kmake arm64 Image modules

			# Build with an explicit toolchain prefix
			$ kmake build --arch riscv --cross-compile riscv64-unknown-linux-gnu- -- Image

			# Show what would be executed
			$ kmake env --arch x86 bzImage
		`),
		TraverseChildren: true,
	})
	if err != nil {
		panic(err)
	}

	cmd.AddGroup(&cobra.Group{ID: "build", Title: "BUILD COMMANDS"})
	cmd.AddCommand(build.NewCmd())
	cmd.AddCommand(build.NewArchCmd("native", ""))
	for _, arch := range toolchain.Architectures() {
		cmd.AddCommand(build.NewArchCmd(arch.String(), arch.String()))
	}
	cmd.AddCommand(env.NewCmd())
	cmd.AddCommand(shell.NewCmd())

	cmd.AddGroup(&cobra.Group{ID: "image", Title: "TOOLCHAIN IMAGE COMMANDS"})
	cmd.AddCommand(image.NewCmd())

	cmd.AddGroup(&cobra.Group{ID: "cache", Title: "COMPILER CACHE COMMANDS"})
	cmd.AddCommand(cache.NewCmd())

	cmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISCELLANEOUS COMMANDS"})
	cmd.AddCommand(kmakeconfig.NewCmd())
	cmd.AddCommand(version.NewCmd())

	return cmd
}

// PersistentPre applies the global flags, which are bound to the
// configuration, to the logger and the streams in the context.
func (opts *KMakeOptions) PersistentPre(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.G(ctx)
	ios := iostreams.G(ctx)

	if cfg.NoPrompt {
		ios.SetNeverPrompt(true)
	}

	ctx = log.WithLogger(ctx, cli.NewLogger(ios, cfg))

	if os.Getenv("SUDO_UID") != "" && cfg.Runtime == config.RuntimeDocker {
		log.G(ctx).Warn("detected invocation via sudo, build output will be owned by root")
	}

	log.G(ctx).Debugf("kmake %s", kitversion.Version())

	cmd.SetContext(ctx)

	return nil
}

func (opts *KMakeOptions) Run(_ context.Context, _ []string) error {
	return pflag.ErrHelp
}

func Main(args []string) int {
	cmd := NewCmd()
	cmd.SetArgs(args[1:])

	ctx := signals.SetupSignalContext()

	copts, err := cli.NewCliOptions(
		cli.WithDefaultConfigManager(),
		cli.WithDefaultIOStreams(),
		cli.WithDefaultLogger(),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Global flags write straight into the configuration.
	if err := cmdfactory.AttributeFlags(cmd, copts.ConfigManager.Config); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cmd.SetOut(copts.IOStreams.Out)
	cmd.SetErr(copts.IOStreams.ErrOut)

	return cmdfactory.Main(copts.WithContext(ctx), cmd)
}
