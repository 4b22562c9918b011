// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package exec

import (
	"github.com/kballard/go-shellquote"
)

// QuoteArgs joins args into a single line which a POSIX shell splits back into
// the same arguments.
func QuoteArgs(args []string) string {
	return shellquote.Join(args...)
}
