// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package build

import (
	"context"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kmake.sh/toolchain"
)

func TestBuildRequest(t *testing.T) {
	opts := &BuildOptions{
		Architecture: toolchain.String("riscv"),
		CrossCompile: toolchain.String(""),
		Jobs:         toolchain.Int(3),
	}

	req := opts.Request([]string{"defconfig", "Image"})

	require.NotNil(t, req.Architecture)
	assert.Equal(t, "riscv", *req.Architecture)
	require.NotNil(t, req.CrossCompile)
	assert.Equal(t, "", *req.CrossCompile)
	require.NotNil(t, req.Parallelism)
	assert.Equal(t, 3, *req.Parallelism)
	assert.Equal(t, []string{"defconfig", "Image"}, req.Args)
}

func TestBuildRequestAbsentOptions(t *testing.T) {
	req := (&BuildOptions{}).Request(nil)

	assert.Nil(t, req.Architecture)
	assert.Nil(t, req.CrossCompile)
	assert.Nil(t, req.Parallelism)
}

func TestArchRequest(t *testing.T) {
	req := (&ArchOptions{arch: "arm64"}).Request([]string{"-j2", "--no-cache"})

	require.NotNil(t, req.Architecture)
	assert.Equal(t, "arm64", *req.Architecture)
	assert.Nil(t, req.CrossCompile)
	assert.Equal(t, []string{"-j2", "--no-cache"}, req.Args)
}

func TestNativeRequest(t *testing.T) {
	req := (&ArchOptions{}).Request([]string{"menuconfig"})

	assert.Nil(t, req.Architecture)
	assert.Equal(t, []string{"menuconfig"}, req.Args)
}

func TestArchHelp(t *testing.T) {
	err := (&ArchOptions{arch: "arm"}).Run(context.Background(), []string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestNewArchCmd(t *testing.T) {
	cmd := NewArchCmd("riscv", "riscv")

	assert.Equal(t, "riscv", cmd.Name())
	assert.True(t, cmd.DisableFlagParsing)
	assert.Contains(t, cmd.Long, "kmake build --arch riscv")

	native := NewArchCmd("native", "")
	assert.Contains(t, native.Short, "natively")
}

func TestNewCmdStopsAtFirstArgument(t *testing.T) {
	cmd := NewCmd()

	require.NoError(t, cmd.ParseFlags([]string{"--arch", "x86", "bzImage", "-j2"}))
	assert.Equal(t, []string{"bzImage", "-j2"}, cmd.Flags().Args())

	arch, err := cmd.Flags().GetString("arch")
	require.NoError(t, err)
	assert.Equal(t, "x86", arch)
}
