// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package utils holds the pieces shared by the kmake subcommands: where a
// command is executed and how a build request becomes a command line.
package utils

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"kmake.sh/cmdfactory"
	"kmake.sh/config"
	"kmake.sh/container"
	"kmake.sh/exec"
	"kmake.sh/internal/errs"
	"kmake.sh/iostreams"
	"kmake.sh/log"
	gnumake "kmake.sh/make"
)

// Invocation is a single command executed by a Runner.
type Invocation struct {
	Argv        []string
	Env         map[string]string
	Interactive bool

	// Make is set when the invocation is a build.  Argv is its command line.
	Make *gnumake.Make
}

// Runner executes invocations in the source tree.
type Runner interface {
	// Runtime returns the name of the runtime, see config.Runtime*.
	Runtime() string

	// Path returns how the build sees a path relative to the source tree.
	Path(rel string) string

	// Cmdline renders the invocation as a shell command line.
	Cmdline(inv Invocation) string

	// Run executes the invocation.  A non-zero exit status is returned as an
	// *errs.ExitError.
	Run(ctx context.Context, inv Invocation) error

	Close() error
}

// NewRunner returns the runner selected by the `runtime` configuration for the
// current working directory.
func NewRunner(ctx context.Context) (Runner, error) {
	source, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("could not determine working directory: %w", err)
	}

	switch rt := config.G(ctx).Runtime; rt {
	case config.RuntimeLocal:
		return &LocalRunner{Dir: source}, nil

	case config.RuntimeDocker, "":
		docker, err := container.NewDocker(ctx)
		if err != nil {
			return nil, err
		}

		return NewDockerRunner(ctx, docker, source)

	default:
		return nil, fmt.Errorf("runtime %q: %w", rt, errs.ErrUnsupported)
	}
}

// DockerRunner executes invocations in the toolchain container with the
// source tree bind mounted at the configured working directory.
type DockerRunner struct {
	docker  *container.Docker
	image   string
	source  string
	workdir string
	user    string
	cpus    float64
	memory  int64
}

// NewDockerRunner returns a runner using the image and resource limits of the
// configuration in the context.
func NewDockerRunner(ctx context.Context, docker *container.Docker, source string) (*DockerRunner, error) {
	cfg := config.G(ctx)

	cpus, err := ParseCPUs(cfg.CPUs)
	if err != nil {
		return nil, err
	}

	memory, err := ParseMemory(cfg.Memory)
	if err != nil {
		return nil, err
	}

	source, err = filepath.Abs(source)
	if err != nil {
		return nil, err
	}

	return &DockerRunner{
		docker:  docker,
		image:   cfg.Image,
		source:  source,
		workdir: cfg.Workdir,
		user:    HostUser(),
		cpus:    cpus,
		memory:  memory,
	}, nil
}

func (r *DockerRunner) Runtime() string {
	return config.RuntimeDocker
}

func (r *DockerRunner) Path(rel string) string {
	if rel == "" || path.IsAbs(rel) {
		return rel
	}

	return path.Join(r.workdir, filepath.ToSlash(rel))
}

func (r *DockerRunner) spec(inv Invocation) container.RunSpec {
	return container.RunSpec{
		Image:       r.image,
		Argv:        inv.Argv,
		Env:         inv.Env,
		Source:      r.source,
		Workdir:     r.workdir,
		User:        r.user,
		CPUs:        r.cpus,
		Memory:      r.memory,
		Interactive: inv.Interactive,
	}
}

func (r *DockerRunner) Cmdline(inv Invocation) string {
	return r.spec(inv).Cmdline()
}

func (r *DockerRunner) Run(ctx context.Context, inv Invocation) error {
	ios := iostreams.G(ctx)

	spec := r.spec(inv)
	spec.Stdin = ios.In
	spec.Stdout = ios.Out
	spec.Stderr = ios.ErrOut

	if inv.Interactive {
		spec.TerminalSize = func() (uint, uint) {
			width, height, err := ios.TerminalSize()
			if err != nil || width <= 0 || height <= 0 {
				return 80, 24
			}
			return uint(width), uint(height)
		}
	}

	code, err := r.docker.Run(ctx, spec)
	if err != nil {
		if errors.Is(err, container.ErrImageNotFound) {
			return ImageRemediation(ctx, r.image, err)
		}

		return err
	}

	return errs.NewExitError(code)
}

func (r *DockerRunner) Close() error {
	if r.docker == nil {
		return nil
	}

	return r.docker.Close()
}

// LocalRunner executes invocations directly on the host.
type LocalRunner struct {
	Dir string
}

func (r *LocalRunner) Runtime() string {
	return config.RuntimeLocal
}

func (r *LocalRunner) Path(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}

	return filepath.Join(r.Dir, rel)
}

func (r *LocalRunner) Cmdline(inv Invocation) string {
	keys := make([]string, 0, len(inv.Env))
	for k := range inv.Env {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	args := make([]string, 0, len(keys)+len(inv.Argv))
	for _, k := range keys {
		args = append(args, k+"="+inv.Env[k])
	}

	return exec.QuoteArgs(append(args, inv.Argv...))
}

func (r *LocalRunner) Run(ctx context.Context, inv Invocation) error {
	if len(inv.Argv) == 0 {
		return fmt.Errorf("nothing to execute: %w", errs.ErrInvalid)
	}

	ios := iostreams.G(ctx)

	eopts := []exec.ExecOption{
		exec.WithDir(r.Dir),
		exec.WithEnvMap(inv.Env),
		exec.WithStdin(ios.In),
		exec.WithStdout(ios.Out),
		exec.WithStderr(ios.ErrOut),
	}

	if inv.Make != nil {
		return inv.Make.Execute(ctx, eopts...)
	}

	process, err := exec.NewProcess(inv.Argv[0], inv.Argv[1:], eopts...)
	if err != nil {
		return err
	}

	return process.StartAndWait(ctx)
}

func (r *LocalRunner) Close() error {
	return nil
}

// HostUser returns the `uid:gid` of the invoking user, or an empty string on
// hosts without numeric user IDs.
func HostUser() string {
	uid, gid := os.Getuid(), os.Getgid()
	if uid < 0 || gid < 0 {
		return ""
	}

	return fmt.Sprintf("%d:%d", uid, gid)
}

// ParseCPUs parses the `cpus` setting.  Zero or empty means unlimited.
func ParseCPUs(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	cpus, err := strconv.ParseFloat(s, 64)
	if err != nil || cpus < 0 {
		return 0, fmt.Errorf("invalid number of CPUs %q: %w", s, errs.ErrInvalid)
	}

	return cpus, nil
}

// ParseMemory parses the `memory` setting, e.g. `8GiB`.  Empty means
// unlimited.
func ParseMemory(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	b, err := humanize.ParseBytes(s)
	if err != nil || b > math.MaxInt64 {
		return 0, fmt.Errorf("invalid memory limit %q: %w", s, errs.ErrInvalid)
	}

	return int64(b), nil
}

// ImageRemediation explains how to obtain a missing toolchain image.  The
// returned error is not reported again by cmdfactory.Main.
func ImageRemediation(ctx context.Context, image string, err error) error {
	log.G(ctx).Errorf("the toolchain image %s is not available", image)
	log.G(ctx).Info("")
	log.G(ctx).Info("build it from the bundled Dockerfile with:")
	log.G(ctx).Info("")
	log.G(ctx).Infof("\tkmake image build --tag %s", image)
	log.G(ctx).Info("")
	log.G(ctx).Info("or pull it from a registry with:")
	log.G(ctx).Info("")
	log.G(ctx).Infof("\tkmake image pull %s", image)
	log.G(ctx).Info("")

	return errors.Join(cmdfactory.ErrSilent, err)
}
