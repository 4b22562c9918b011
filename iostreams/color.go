// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package iostreams

import (
	"fmt"
	"os"

	"github.com/mgutz/ansi"
)

var (
	red    = ansi.ColorFunc("red")
	yellow = ansi.ColorFunc("yellow")
	green  = ansi.ColorFunc("green")
	cyan   = ansi.ColorFunc("cyan")
	gray   = ansi.ColorFunc("black+h")
	bold   = ansi.ColorFunc("default+b")
)

// EnvColorDisabled returns true when NO_COLOR is set or CLICOLOR is 0.
func EnvColorDisabled() bool {
	return os.Getenv("NO_COLOR") != "" || os.Getenv("CLICOLOR") == "0"
}

// EnvColorForced returns true when CLICOLOR_FORCE is set to a non-zero value.
func EnvColorForced() bool {
	return os.Getenv("CLICOLOR_FORCE") != "" && os.Getenv("CLICOLOR_FORCE") != "0"
}

// ColorScheme colours text when enabled and returns it unchanged otherwise.
type ColorScheme struct {
	enabled bool
}

func NewColorScheme(enabled bool) *ColorScheme {
	return &ColorScheme{enabled: enabled}
}

// Enabled returns whether the scheme emits escape sequences.
func (c *ColorScheme) Enabled() bool {
	return c.enabled
}

func (c *ColorScheme) paint(fn func(string) string, t string) string {
	if !c.enabled {
		return t
	}

	return fn(t)
}

func (c *ColorScheme) Bold(t string) string   { return c.paint(bold, t) }
func (c *ColorScheme) Red(t string) string    { return c.paint(red, t) }
func (c *ColorScheme) Yellow(t string) string { return c.paint(yellow, t) }
func (c *ColorScheme) Green(t string) string  { return c.paint(green, t) }
func (c *ColorScheme) Cyan(t string) string   { return c.paint(cyan, t) }
func (c *ColorScheme) Gray(t string) string   { return c.paint(gray, t) }

func (c *ColorScheme) Boldf(t string, args ...interface{}) string {
	return c.Bold(fmt.Sprintf(t, args...))
}

func (c *ColorScheme) SuccessIcon() string {
	return c.Green("✓")
}

func (c *ColorScheme) WarningIcon() string {
	return c.Yellow("!")
}

func (c *ColorScheme) FailureIcon() string {
	return c.Red("X")
}
