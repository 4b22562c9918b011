// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package iostreams

import (
	"bytes"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const defaultTerminalWidth = 80

// IOStreams bundles the standard streams of the process along with what is
// known about whether they are attached to a terminal.
type IOStreams struct {
	In     io.ReadCloser
	Out    io.Writer
	ErrOut io.Writer

	colorEnabled bool

	stdinTTYOverride  bool
	stdinIsTTY        bool
	stdoutTTYOverride bool
	stdoutIsTTY       bool
	stderrTTYOverride bool
	stderrIsTTY       bool

	neverPrompt bool
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func fd(v interface{}) (int, bool) {
	f, ok := v.(*os.File)
	if !ok {
		return 0, false
	}

	return int(f.Fd()), true
}

// System returns the streams of the current process.
func System() *IOStreams {
	stdoutIsTTY := isTerminal(os.Stdout)

	io := &IOStreams{
		In:           os.Stdin,
		Out:          os.Stdout,
		ErrOut:       os.Stderr,
		colorEnabled: EnvColorForced() || (!EnvColorDisabled() && stdoutIsTTY),
	}

	io.SetStdoutTTY(stdoutIsTTY)
	io.SetStderrTTY(isTerminal(os.Stderr))
	io.SetStdinTTY(isTerminal(os.Stdin))

	return io
}

// Test returns streams backed by buffers which are never terminals.
func Test() (*IOStreams, *bytes.Buffer, *bytes.Buffer, *bytes.Buffer) {
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	return &IOStreams{
		In:     io.NopCloser(in),
		Out:    out,
		ErrOut: errOut,
	}, in, out, errOut
}

func (s *IOStreams) ColorEnabled() bool {
	return s.colorEnabled
}

func (s *IOStreams) SetColorEnabled(colorEnabled bool) {
	s.colorEnabled = colorEnabled
}

func (s *IOStreams) SetStdinTTY(isTTY bool) {
	s.stdinTTYOverride = true
	s.stdinIsTTY = isTTY
}

func (s *IOStreams) IsStdinTTY() bool {
	if s.stdinTTYOverride {
		return s.stdinIsTTY
	}

	if f, ok := s.In.(*os.File); ok {
		return isTerminal(f)
	}

	return false
}

func (s *IOStreams) SetStdoutTTY(isTTY bool) {
	s.stdoutTTYOverride = true
	s.stdoutIsTTY = isTTY
}

func (s *IOStreams) IsStdoutTTY() bool {
	if s.stdoutTTYOverride {
		return s.stdoutIsTTY
	}

	if f, ok := s.Out.(*os.File); ok {
		return isTerminal(f)
	}

	return false
}

func (s *IOStreams) SetStderrTTY(isTTY bool) {
	s.stderrTTYOverride = true
	s.stderrIsTTY = isTTY
}

func (s *IOStreams) IsStderrTTY() bool {
	if s.stderrTTYOverride {
		return s.stderrIsTTY
	}

	if f, ok := s.ErrOut.(*os.File); ok {
		return isTerminal(f)
	}

	return false
}

// SetNeverPrompt disables interactive sessions regardless of the terminal.
func (s *IOStreams) SetNeverPrompt(v bool) {
	s.neverPrompt = v
}

// CanPrompt returns true when both stdin and stdout are terminals and
// prompting was not disabled.
func (s *IOStreams) CanPrompt() bool {
	if s.neverPrompt {
		return false
	}

	return s.IsStdinTTY() && s.IsStdoutTTY()
}

// TerminalWidth returns the width of the terminal attached to stdout.
func (s *IOStreams) TerminalWidth() int {
	if fd, ok := fd(s.Out); ok {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}

	return defaultTerminalWidth
}

// TerminalSize returns the size of the terminal attached to stdout.
func (s *IOStreams) TerminalSize() (width, height int, err error) {
	fd, ok := fd(s.Out)
	if !ok {
		return defaultTerminalWidth, 24, nil
	}

	return term.GetSize(fd)
}

// MakeRaw puts the terminal attached to stdin in raw mode.  The returned
// function restores the previous state.
func (s *IOStreams) MakeRaw() (func() error, error) {
	fd, ok := fd(s.In)
	if !ok || !s.IsStdinTTY() {
		return func() error { return nil }, nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	return func() error {
		return term.Restore(fd, state)
	}, nil
}

func (s *IOStreams) ColorScheme() *ColorScheme {
	return NewColorScheme(s.ColorEnabled())
}
