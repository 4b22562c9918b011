// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package fancymap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintFancyMap(t *testing.T) {
	var buf bytes.Buffer

	PrintFancyMap(&buf, "build completed", true,
		FancyMapEntry{Key: "arch", Value: "arm64"},
		FancyMapEntry{Key: "toolchain", Value: "aarch64-linux-gnu-", Right: "(ccache)"},
	)

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "build completed")
	assert.Contains(t, lines[2], "arch")
	assert.Contains(t, lines[2], "arm64")
	assert.Contains(t, lines[3], "└")
	assert.Contains(t, lines[3], "(ccache)")
}
