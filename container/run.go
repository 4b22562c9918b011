// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"kmake.sh/exec"
	"kmake.sh/log"
)

// NamePrefix prefixes the name of every container started by kmake.
const NamePrefix = "kmake-"

// RunSpec describes a single invocation inside the toolchain container.
type RunSpec struct {
	// Image is the toolchain image reference.
	Image string

	// Argv is the command line executed in the container.
	Argv []string

	// Env is passed to the container unchanged.
	Env map[string]string

	// Source is the host directory mounted at Workdir.
	Source string

	// Workdir is the mount target and working directory.
	Workdir string

	// User is the `uid:gid` the command runs as, empty for the image default.
	User string

	// CPUs limits the number of CPUs, 0 for unlimited.
	CPUs float64

	// Memory limits memory in bytes, 0 for unlimited.
	Memory int64

	// Interactive allocates a TTY and forwards Stdin.
	Interactive bool

	// TerminalSize returns the terminal size used for the TTY.
	TerminalSize func() (width, height uint)

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// env returns the environment as sorted KEY=VALUE assignments.
func (spec RunSpec) env() []string {
	keys := make([]string, 0, len(spec.Env))
	for k := range spec.Env {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+spec.Env[k])
	}

	return env
}

func (spec RunSpec) config() *container.Config {
	return &container.Config{
		Image:        spec.Image,
		Cmd:          spec.Argv,
		Env:          spec.env(),
		WorkingDir:   spec.Workdir,
		User:         spec.User,
		Tty:          spec.Interactive,
		OpenStdin:    spec.Interactive,
		StdinOnce:    spec.Interactive,
		AttachStdin:  spec.Interactive,
		AttachStdout: true,
		AttachStderr: true,
		Labels: map[string]string{
			"sh.kmake.workdir": spec.Source,
		},
	}
}

func (spec RunSpec) hostConfig() *container.HostConfig {
	hc := &container.HostConfig{
		Init: boolPtr(true),
		Resources: container.Resources{
			NanoCPUs: int64(spec.CPUs * 1e9),
			Memory:   spec.Memory,
		},
	}

	if spec.Source != "" {
		hc.Mounts = []mount.Mount{{
			Type:   mount.TypeBind,
			Source: spec.Source,
			Target: spec.Workdir,
		}}
	}

	return hc
}

func boolPtr(b bool) *bool {
	return &b
}

// Cmdline renders the invocation as an equivalent `docker run` command line.
func (spec RunSpec) Cmdline() string {
	args := []string{"docker", "run", "--rm", "--init"}

	if spec.Interactive {
		args = append(args, "-it")
	}

	if spec.Source != "" {
		args = append(args, "-v", spec.Source+":"+spec.Workdir)
	}

	if spec.Workdir != "" {
		args = append(args, "-w", spec.Workdir)
	}

	if spec.User != "" {
		args = append(args, "-u", spec.User)
	}

	if spec.CPUs > 0 {
		args = append(args, fmt.Sprintf("--cpus=%g", spec.CPUs))
	}

	if spec.Memory > 0 {
		args = append(args, fmt.Sprintf("--memory=%d", spec.Memory))
	}

	for _, e := range spec.env() {
		args = append(args, "-e", e)
	}

	args = append(args, spec.Image)
	args = append(args, spec.Argv...)

	return exec.QuoteArgs(args)
}

// Run executes the invocation in a new container and returns the exit code of
// the command.  The container is removed once it has exited or the context is
// cancelled.
func (d *Docker) Run(ctx context.Context, spec RunSpec) (int, error) {
	exists, err := d.ImageExists(ctx, spec.Image)
	if err != nil {
		return -1, err
	}

	if !exists {
		return -1, fmt.Errorf("%s: %w", spec.Image, ErrImageNotFound)
	}

	name := NamePrefix + uuid.NewString()[:8]

	created, err := d.client.ContainerCreate(ctx, spec.config(), spec.hostConfig(), nil, nil, name)
	if err != nil {
		return -1, fmt.Errorf("could not create container: %w", err)
	}

	id := created.ID
	for _, warning := range created.Warnings {
		log.G(ctx).Warn(warning)
	}

	log.G(ctx).
		WithField("container", name).
		Debug(spec.Cmdline())

	defer func() {
		// The request context may already be cancelled.
		if err := d.client.ContainerRemove(context.Background(), id, container.RemoveOptions{
			Force: true,
		}); err != nil {
			log.G(ctx).
				WithField("container", name).
				WithError(err).
				Warn("could not remove container")
		}
	}()

	hijack, err := d.client.ContainerAttach(ctx, id, container.AttachOptions{
		Stream: true,
		Stdin:  spec.Interactive,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return -1, fmt.Errorf("could not attach to container: %w", err)
	}

	defer hijack.Close()

	waitCh, errCh := d.client.ContainerWait(ctx, id, container.WaitConditionNextExit)

	if err := d.client.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return -1, fmt.Errorf("could not start container: %w", err)
	}

	if spec.Interactive && spec.TerminalSize != nil {
		width, height := spec.TerminalSize()
		if err := d.client.ContainerResize(ctx, id, container.ResizeOptions{
			Width:  width,
			Height: height,
		}); err != nil {
			log.G(ctx).WithError(err).Debug("could not resize terminal")
		}
	}

	if spec.Interactive && spec.Stdin != nil {
		go func() {
			_, _ = io.Copy(hijack.Conn, spec.Stdin)
			_ = hijack.CloseWrite()
		}()
	}

	stdout := spec.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	stderr := spec.Stderr
	if stderr == nil {
		stderr = stdout
	}

	group, gctx := errgroup.WithContext(ctx)

	stop := context.AfterFunc(gctx, func() {
		hijack.Close()
	})
	defer stop()

	group.Go(func() error {
		var err error
		if spec.Interactive {
			_, err = io.Copy(stdout, hijack.Reader)
		} else {
			_, err = stdcopy.StdCopy(stdout, stderr, hijack.Reader)
		}

		if err != nil && gctx.Err() != nil {
			return nil
		}

		return err
	})

	exitCode := -1

	group.Go(func() error {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-errCh:
			return fmt.Errorf("could not wait for container: %w", err)

		case resp := <-waitCh:
			if resp.Error != nil && resp.Error.Message != "" {
				return errors.New(resp.Error.Message)
			}

			exitCode = int(resp.StatusCode)
			return nil
		}
	})

	if err := group.Wait(); err != nil {
		return -1, err
	}

	return exitCode, nil
}
