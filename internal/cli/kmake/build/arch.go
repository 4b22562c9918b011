// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package build

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kmake.sh/cmdfactory"
	"kmake.sh/internal/cli/kmake/utils"
	"kmake.sh/toolchain"
)

// ArchOptions build for a fixed architecture.  All arguments are passed to make
// verbatim, flags included.
type ArchOptions struct {
	arch string
}

// NewArchCmd returns the shortcut command `name` building for arch.  An empty
// arch leaves the architecture to the configured default and builds
// natively.
func NewArchCmd(name, arch string) *cobra.Command {
	short := fmt.Sprintf("Build the kernel for %s", name)
	long := fmt.Sprintf(heredoc.Doc(`
		Build the kernel for %s in the current working directory.

		All arguments are passed to make verbatim.  This is equivalent to:

		  kmake build --arch %s -- [MAKE ARGS...]
	`), name, name)

	if arch == "" {
		short = "Build the kernel natively for the default architecture"
		long = heredoc.Doc(`
			Build the kernel natively for the configured default architecture, without
			a cross-compiler prefix.

			All arguments are passed to make verbatim.  This is equivalent to:

			  kmake build -- [MAKE ARGS...]
		`)
	}

	cmd, err := cmdfactory.New(&ArchOptions{arch: arch}, cobra.Command{
		Short:              short,
		Long:               long,
		Use:                name + " [MAKE ARGS...]",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		Example: heredoc.Docf(`
			# Configure and build
			$ kmake %[1]s defconfig
			$ kmake %[1]s -k V=1
		`, name),
		Annotations: map[string]string{
			cmdfactory.AnnotationHelpGroup: "build",
		},
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

// Request returns the build request for the arguments.
func (opts *ArchOptions) Request(args []string) toolchain.BuildRequest {
	req := toolchain.BuildRequest{Args: args}
	if opts.arch != "" {
		req.Architecture = toolchain.String(opts.arch)
	}

	return req
}

func (opts *ArchOptions) Run(ctx context.Context, args []string) error {
	if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
		return pflag.ErrHelp
	}

	return utils.Build(ctx, opts.Request(args), false)
}
