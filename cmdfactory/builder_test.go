// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package cmdfactory

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kmake.sh/internal/errs"
	"kmake.sh/log"
)

type FakeBuild struct {
	Arch         string  `long:"arch" short:"m" env:"FAKE_ARCH" usage:"Architecture" default:"arm64"`
	CrossCompile *string `long:"cross-compile" short:"x" env:"FAKE_CROSS_COMPILE" usage:"Prefix"`
	Jobs         *int    `long:"jobs" short:"j" usage:"Jobs"`
	DryRun       bool    `long:"dry-run" usage:"Print only" local:"true"`
	Retries      int     `long:"retries" usage:"Retries" default:"2"`
	Ignored      string  `long:"ignored" noattribute:"true"`

	Nested struct {
		Dir string `long:"nested-dir" usage:"Nested directory" default:".cache"`
	}

	err  error
	args []string
}

func (opts *FakeBuild) Run(_ context.Context, args []string) error {
	opts.args = args
	return opts.err
}

func newFake(t *testing.T, opts *FakeBuild) *cobra.Command {
	t.Helper()

	cmd, err := New(opts, cobra.Command{Use: "build"})
	require.NoError(t, err)
	cmd.SetArgs([]string{})

	return cmd
}

func TestNameFromType(t *testing.T) {
	assert.Equal(t, "fake-build", Name(&FakeBuild{}))
}

func TestAttributeFlagsDefaults(t *testing.T) {
	opts := &FakeBuild{}
	cmd := newFake(t, opts)

	require.NoError(t, cmd.Execute())

	assert.Equal(t, "arm64", opts.Arch)
	assert.Equal(t, 2, opts.Retries)
	assert.Equal(t, ".cache", opts.Nested.Dir)
	assert.Nil(t, opts.CrossCompile)
	assert.Nil(t, opts.Jobs)
	assert.False(t, opts.DryRun)
	assert.Nil(t, cmd.Flags().Lookup("ignored"))
}

func TestAttributeFlagsPrecedence(t *testing.T) {
	opts := &FakeBuild{Arch: "riscv"}
	cmd := newFake(t, opts)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "riscv", opts.Arch, "existing value takes precedence over the default")

	t.Setenv("FAKE_ARCH", "x86_64")

	opts = &FakeBuild{Arch: "riscv"}
	cmd = newFake(t, opts)
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "x86_64", opts.Arch, "environment takes precedence over the existing value")

	opts = &FakeBuild{Arch: "riscv"}
	cmd = newFake(t, opts)
	cmd.SetArgs([]string{"-m", "arm"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "arm", opts.Arch, "flag takes precedence over the environment")
}

func TestAttributeFlagsOptional(t *testing.T) {
	opts := &FakeBuild{}
	cmd := newFake(t, opts)
	cmd.SetArgs([]string{"--cross-compile=", "-j", "7", "--dry-run", "Image"})

	require.NoError(t, cmd.Execute())

	require.NotNil(t, opts.CrossCompile)
	assert.Equal(t, "", *opts.CrossCompile)
	require.NotNil(t, opts.Jobs)
	assert.Equal(t, 7, *opts.Jobs)
	assert.True(t, opts.DryRun)
	assert.Equal(t, []string{"Image"}, opts.args)
}

func TestAttributeFlagsOptionalFromEnv(t *testing.T) {
	t.Setenv("FAKE_CROSS_COMPILE", "llvm-")

	opts := &FakeBuild{}
	cmd := newFake(t, opts)

	require.NoError(t, cmd.Execute())

	require.NotNil(t, opts.CrossCompile)
	assert.Equal(t, "llvm-", *opts.CrossCompile)
}

func TestMainExitCodes(t *testing.T) {
	logger, hook := test.NewNullLogger()
	ctx := log.WithLogger(context.Background(), logger)

	tests := []struct {
		name     string
		err      error
		args     []string
		want     int
		wantLogs int
	}{
		{name: "success", want: 0},
		{name: "pass-through exit code", err: errs.NewExitError(2), want: 2},
		{name: "plain error", err: errors.New("boom"), want: 1, wantLogs: 1},
		{name: "unknown flag", args: []string{"--nope"}, want: 1, wantLogs: 2},
		{name: "silent", err: ErrSilent, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook.Reset()

			opts := &FakeBuild{err: tt.err}
			cmd := newFake(t, opts)
			if tt.args != nil {
				cmd.SetArgs(tt.args)
			}

			assert.Equal(t, tt.want, Main(ctx, cmd))
			assert.Len(t, hook.AllEntries(), tt.wantLogs)
		})
	}
}

type color string

func (c color) String() string { return string(c) }

func TestEnumFlag(t *testing.T) {
	f := NewEnumFlag([]color{"red", "green"}, color("red"))

	assert.Equal(t, "red", f.String())
	require.NoError(t, f.Set("green"))
	assert.Equal(t, color("green"), f.Value)

	err := f.Set("blue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "red, green")

	flag := VarPF(f, "color", "c", "Colour")
	assert.Equal(t, "green", flag.DefValue)
}
