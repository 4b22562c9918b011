// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package iostreams

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestStreams(t *testing.T) {
	io, _, out, _ := Test()

	assert.False(t, io.IsStdoutTTY())
	assert.False(t, io.IsStdinTTY())
	assert.False(t, io.CanPrompt())
	assert.Equal(t, defaultTerminalWidth, io.TerminalWidth())

	io.SetStdinTTY(true)
	io.SetStdoutTTY(true)
	assert.True(t, io.CanPrompt())

	io.SetNeverPrompt(true)
	assert.False(t, io.CanPrompt())

	_, _ = io.Out.Write([]byte("hello"))
	assert.Equal(t, "hello", out.String())
}

func TestMakeRawWithoutTerminal(t *testing.T) {
	io, _, _, _ := Test()

	restore, err := io.MakeRaw()
	require.NoError(t, err)
	assert.NoError(t, restore())
}

func TestColorScheme(t *testing.T) {
	cs := NewColorScheme(false)
	assert.Equal(t, "x", cs.Red("x"))
	assert.Equal(t, "bold 1", cs.Boldf("bold %d", 1))

	cs = NewColorScheme(true)
	assert.NotEqual(t, "x", cs.Red("x"))
	assert.Contains(t, cs.Green("x"), "x")
}

func TestFromContext(t *testing.T) {
	assert.Same(t, IO, G(context.Background()))

	io, _, _, _ := Test()
	assert.Same(t, io, G(WithIOStreams(context.Background(), io)))
}
