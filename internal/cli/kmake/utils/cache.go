// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package utils

import (
	"context"
	"fmt"

	"kmake.sh/internal/errs"
)

// CacheInvocation returns an invocation of ccache with the settings used by
// builds.
func CacheInvocation(ctx context.Context, runner Runner, argv []string) (Invocation, error) {
	cache, err := NewCache(ctx, runner)
	if err != nil {
		return Invocation{}, err
	}

	if !cache.Enabled() {
		return Invocation{}, fmt.Errorf("the compiler cache is disabled: %w", errs.ErrUnsupported)
	}

	return Invocation{
		Argv: argv,
		Env:  cache.Env(),
	}, nil
}
