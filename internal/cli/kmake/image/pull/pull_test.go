// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package pull

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kmake.sh/config"
)

func TestReference(t *testing.T) {
	cfgm, err := config.NewConfigManager()
	require.NoError(t, err)

	cfgm.Config.Image = "registry.example.com/kmake:v2"
	ctx := config.WithConfigManager(context.Background(), cfgm)

	assert.Equal(t, "registry.example.com/kmake:v2", Reference(ctx, nil))
	assert.Equal(t, "registry.example.com/kmake:v2", Reference(ctx, []string{""}))
	assert.Equal(t, "kmake:dev", Reference(ctx, []string{"kmake:dev"}))
}

func TestRunInvalidReference(t *testing.T) {
	err := Pull(context.Background(), nil, "UPPER/case")
	assert.Error(t, err)
}
