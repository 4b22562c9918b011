// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package pull

import (
	"context"

	"github.com/MakeNowJust/heredoc"
	"github.com/containerd/platforms"
	"github.com/spf13/cobra"

	"kmake.sh/cmdfactory"
	"kmake.sh/config"
	"kmake.sh/container"
	"kmake.sh/internal/cli/kmake/utils"
	"kmake.sh/log"
)

type PullOptions struct {
	Platform string `local:"true" long:"platform" usage:"Platform of the image (default is the host platform)"`
}

// Pull the toolchain image from a registry.
func Pull(ctx context.Context, opts *PullOptions, args ...string) error {
	if opts == nil {
		opts = &PullOptions{}
	}

	return opts.Run(ctx, args)
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&PullOptions{}, cobra.Command{
		Short: "Pull the toolchain image",
		Use:   "pull [FLAGS] [REF]",
		Args:  cmdfactory.MaximumArgs(1, "expected at most one image reference"),
		Long: heredoc.Doc(`
			Pull the toolchain image from a registry.  Without a reference the
			configured image is pulled.  Credentials are read from the Docker client
			configuration.
		`),
		Example: heredoc.Doc(`
			# Pull the configured image
			$ kmake image pull

			# Pull a specific image
			$ kmake image pull ghcr.io/example/kmake:latest
		`),
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

// Reference returns the image to operate on: the argument if given, otherwise
// the configured image.
func Reference(ctx context.Context, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}

	return config.G(ctx).Image
}

func (opts *PullOptions) Run(ctx context.Context, args []string) error {
	ref := Reference(ctx, args)

	if _, err := container.NormalizeReference(ref); err != nil {
		return cmdfactory.FlagErrorWrap(err)
	}

	platform := opts.Platform
	if platform == "" {
		platform = platforms.DefaultString()
	}

	docker, err := container.NewDocker(ctx)
	if err != nil {
		return err
	}

	defer docker.Close()

	log.G(ctx).
		WithField("image", ref).
		WithField("platform", platform).
		Info("pulling toolchain image")

	return docker.Pull(ctx, ref, platform, utils.Progress(ctx))
}
