// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package image

import (
	"context"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kmake.sh/cmdfactory"

	"kmake.sh/internal/cli/kmake/image/build"
	"kmake.sh/internal/cli/kmake/image/inspect"
	"kmake.sh/internal/cli/kmake/image/pull"
)

type ImageOptions struct{}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&ImageOptions{}, cobra.Command{
		Short:   "Manage the toolchain image",
		Use:     "image SUBCOMMAND",
		Aliases: []string{"img"},
		Long: heredoc.Doc(`
			Build, pull and inspect the container image carrying the cross-compilation
			toolchains.
		`),
		Annotations: map[string]string{
			cmdfactory.AnnotationHelpGroup: "image",
		},
	})
	if err != nil {
		panic(err)
	}

	cmd.AddCommand(build.NewCmd())
	cmd.AddCommand(pull.NewCmd())
	cmd.AddCommand(inspect.NewCmd())

	return cmd
}

func (opts *ImageOptions) Run(_ context.Context, _ []string) error {
	return pflag.ErrHelp
}
