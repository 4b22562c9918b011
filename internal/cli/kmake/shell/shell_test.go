// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package shell

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"kmake.sh/toolchain"
)

func TestInvocation(t *testing.T) {
	s := toolchain.NewSelector(toolchain.WithParallelismFunc(func() int { return 6 }))
	rb := s.Resolve(context.Background(), toolchain.BuildRequest{Architecture: toolchain.String("arm")})

	inv := Invocation(rb, map[string]string{"CCACHE_DIR": "/src/.ccache", "ARCH": "ignored"}, nil, true)

	assert.Equal(t, []string{DefaultShell}, inv.Argv)
	assert.True(t, inv.Interactive)
	assert.Equal(t, map[string]string{
		"ARCH":          "arm",
		"CROSS_COMPILE": "arm-linux-gnueabihf-",
		"CCACHE_DIR":    "/src/.ccache",
		"MAKEFLAGS":     "-j6",
	}, inv.Env)

	inv = Invocation(rb, nil, []string{"make", "menuconfig"}, false)
	assert.Equal(t, []string{"make", "menuconfig"}, inv.Argv)
	assert.False(t, inv.Interactive)
}
