// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2024, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package fancymap provides a utility method which can be used to output a
// nice key-value list to the provided output writer.
package fancymap

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	textGreen     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render
	textRed       = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render
	textLightGray = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render
)

// FancyMapEntry represents one item in the fancy list.
type FancyMapEntry struct {
	Key   string
	Value string
	Right string
}

// PrintFancyMap uses the provided writer `w` and outputs a pretty printed listed
// based on the list of `entries`.  A `title` and `success` state can be set
// which are prepended to the list.
func PrintFancyMap(w io.Writer, title string, success bool, entries ...FancyMapEntry) {
	keyPad, valPad := 0, 0

	for _, entry := range entries {
		keyPad = max(keyPad, len(entry.Key)+1)
		valPad = max(valPad, len(entry.Value))
	}

	color := textRed
	if success {
		color = textGreen
	}

	fmt.Fprintf(w, "\n%s%s%s %s\n %s\n",
		textLightGray("["), color("●"), textLightGray("]"),
		title,
		textLightGray("│"),
	)

	for i, entry := range entries {
		anchor := "├"
		if i == len(entries)-1 {
			anchor = "└"
		}

		line := fmt.Sprintf(" %s %s: %s",
			textLightGray(anchor+strings.Repeat("─", keyPad-len(entry.Key))),
			textLightGray(entry.Key),
			entry.Value,
		)

		if entry.Right != "" {
			line += strings.Repeat(" ", valPad-len(entry.Value)+1) + textLightGray(entry.Right)
		}

		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
}
