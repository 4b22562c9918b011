// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package iostreams

import (
	"context"
)

var (
	// G is an alias for FromContext.
	G = FromContext

	// IO is the system IO stream.
	IO = System()
)

type contextKey struct{}

// WithIOStreams returns a new context with the provided streams.
func WithIOStreams(ctx context.Context, iostreams *IOStreams) context.Context {
	return context.WithValue(ctx, contextKey{}, iostreams)
}

// FromContext returns the streams in the context or the system streams.
func FromContext(ctx context.Context) *IOStreams {
	if ctx == nil {
		return IO
	}

	s, ok := ctx.Value(contextKey{}).(*IOStreams)
	if !ok || s == nil {
		return IO
	}

	return s
}
