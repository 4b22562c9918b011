// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

package kmake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCmdSubcommands(t *testing.T) {
	cmd := NewCmd()

	for _, name := range []string{
		"build", "native", "x86_64", "arm64", "arm", "riscv",
		"env", "shell", "image", "cache", "config", "version",
	} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestNewCmdGroups(t *testing.T) {
	cmd := NewCmd()

	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" {
			continue
		}

		assert.NotEmpty(t, sub.Short, sub.Name())
	}

	image, _, err := cmd.Find([]string{"image", "pull"})
	require.NoError(t, err)
	assert.Equal(t, "pull", image.Name())
}
