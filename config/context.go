// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"context"
)

var (
	// G is an alias for FromContext.
	G = FromContext

	// M is an alias for ManagerFromContext.
	M = ManagerFromContext
)

type contextKey struct{}

// WithConfigManager returns a new context with the provided configuration
// manager.
func WithConfigManager(ctx context.Context, cfgm *ConfigManager) context.Context {
	return context.WithValue(ctx, contextKey{}, cfgm)
}

// ManagerFromContext returns the configuration manager in the context or nil.
func ManagerFromContext(ctx context.Context) *ConfigManager {
	cfgm, _ := ctx.Value(contextKey{}).(*ConfigManager)
	return cfgm
}

// FromContext returns the configuration in the context, or the default
// configuration if there is none.
func FromContext(ctx context.Context) *KMake {
	if cfgm := ManagerFromContext(ctx); cfgm != nil && cfgm.Config != nil {
		return cfgm.Config
	}

	c, err := NewDefaultConfig()
	if err != nil {
		return &KMake{}
	}

	return c
}
