// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"kmake.sh/cmdfactory"
	"kmake.sh/config"
	"kmake.sh/container"
	"kmake.sh/internal/cli/kmake/utils"
	"kmake.sh/log"
)

type BuildOptions struct {
	File     string `local:"true" long:"file" short:"f" usage:"Path of the Dockerfile, relative to the context (default is the bundled Dockerfile)"`
	NoCache  bool   `local:"true" long:"no-cache" usage:"Do not use cached layers"`
	Platform string `local:"true" long:"platform" usage:"Platform of the image, e.g. linux/amd64"`
	Pull     bool   `local:"true" long:"pull" usage:"Always pull a newer version of the base image"`
	Tag      string `local:"true" long:"tag" short:"t" usage:"Name of the image (default is the configured image)"`
}

// Build the toolchain image.
func Build(ctx context.Context, opts *BuildOptions, args ...string) error {
	if opts == nil {
		opts = &BuildOptions{}
	}

	return opts.Run(ctx, args)
}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&BuildOptions{}, cobra.Command{
		Short: "Build the toolchain image",
		Use:   "build [FLAGS] [DIR]",
		Args:  cmdfactory.MaxDirArgs(1),
		Long: heredoc.Doc(`
			Build the toolchain image.

			Without a directory the bundled Dockerfile is used.  It installs the
			x86_64, ARM64, ARM and RISC-V cross-compilers, the kernel build
			dependencies and ccache, and creates a build user with the UID and GID of
			the invoking user so build output is owned by that user.
		`),
		Example: heredoc.Doc(`
			# Build the bundled toolchain image
			$ kmake image build

			# Build a custom image
			$ kmake image build --tag my-toolchain:latest path/to/context
		`),
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

// BuildArgs returns the build arguments passed to the Dockerfile.
func BuildArgs() map[string]*string {
	uid, gid := os.Getuid(), os.Getgid()
	if uid < 0 || gid < 0 {
		return nil
	}

	return container.UserBuildArgs(uid, gid)
}

func (opts *BuildOptions) Run(ctx context.Context, args []string) error {
	tag := opts.Tag
	if tag == "" {
		tag = config.G(ctx).Image
	}

	if _, err := container.NormalizeReference(tag); err != nil {
		return cmdfactory.FlagErrorf("invalid tag %q: %v", tag, err)
	}

	contextDir := ""
	dockerfile := opts.File

	if len(args) > 0 {
		contextDir = args[0]
	} else {
		if dockerfile != "" {
			return cmdfactory.FlagErrorf("--file requires a context directory")
		}

		tmp, err := os.MkdirTemp("", "kmake-image-")
		if err != nil {
			return err
		}

		defer os.RemoveAll(tmp)

		if err := container.WriteDefaultContext(tmp); err != nil {
			return err
		}

		contextDir = tmp
	}

	if dockerfile == "" {
		dockerfile = container.DockerfileName
	}

	if _, err := os.Stat(filepath.Join(contextDir, dockerfile)); err != nil {
		return fmt.Errorf("could not find Dockerfile: %w", err)
	}

	docker, err := container.NewDocker(ctx)
	if err != nil {
		return err
	}

	defer docker.Close()

	log.G(ctx).
		WithField("tag", tag).
		WithField("context", contextDir).
		Info("building toolchain image")

	if err := docker.Build(ctx, container.BuildSpec{
		ContextDir: contextDir,
		Dockerfile: dockerfile,
		Tags:       []string{tag},
		BuildArgs:  BuildArgs(),
		Platform:   opts.Platform,
		NoCache:    opts.NoCache,
		Pull:       opts.Pull,
		Progress:   utils.Progress(ctx),
	}); err != nil {
		return err
	}

	log.G(ctx).WithField("tag", tag).Info("toolchain image built")

	return nil
}
