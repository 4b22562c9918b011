// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package cache

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kmake.sh/ccache"
	"kmake.sh/config"
	"kmake.sh/internal/cli/kmake/utils"
	"kmake.sh/internal/errs"
	"kmake.sh/log"
)

type recordingRunner struct {
	utils.LocalRunner
	invocations []utils.Invocation
}

func (r *recordingRunner) Run(_ context.Context, inv utils.Invocation) error {
	r.invocations = append(r.invocations, inv)
	return nil
}

func testContext(t *testing.T, disabled bool) context.Context {
	t.Helper()

	cfgm, err := config.NewConfigManager()
	require.NoError(t, err)

	cfgm.Config.Runtime = config.RuntimeDocker
	cfgm.Config.Cache.Disabled = disabled

	logger, _ := test.NewNullLogger()

	ctx := config.WithConfigManager(context.Background(), cfgm)
	return log.WithLogger(ctx, logger)
}

type dockerLikeRunner struct {
	recordingRunner
}

func (r *dockerLikeRunner) Runtime() string {
	return config.RuntimeDocker
}

func TestExecWith(t *testing.T) {
	runner := &dockerLikeRunner{recordingRunner{LocalRunner: utils.LocalRunner{Dir: "/linux"}}}

	require.NoError(t, ExecWith(testContext(t, false), runner, ccache.StatsArgv()))
	require.Len(t, runner.invocations, 1)

	inv := runner.invocations[0]
	assert.Equal(t, []string{"ccache", "-s"}, inv.Argv)
	assert.Equal(t, "/linux/.ccache", inv.Env[ccache.EnvDir])
	assert.False(t, inv.Interactive)
}

func TestExecWithDisabledCache(t *testing.T) {
	runner := &dockerLikeRunner{recordingRunner{LocalRunner: utils.LocalRunner{Dir: "/linux"}}}

	err := ExecWith(testContext(t, true), runner, ccache.ZeroArgv())
	assert.ErrorIs(t, err, errs.ErrUnsupported)
	assert.Empty(t, runner.invocations)
}
