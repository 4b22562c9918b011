// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package utils

import (
	"context"
	"os"

	"kmake.sh/container"
	"kmake.sh/iostreams"
)

// Progress returns where image progress is rendered: the error stream, drawn
// in place when it is a terminal.
func Progress(ctx context.Context) container.ProgressOutput {
	ios := iostreams.G(ctx)

	progress := container.ProgressOutput{
		Out:        ios.ErrOut,
		IsTerminal: ios.IsStderrTTY(),
	}

	if f, ok := ios.ErrOut.(*os.File); ok {
		progress.Fd = f.Fd()
	}

	return progress
}
