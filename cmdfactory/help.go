// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package cmdfactory

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kmake.sh/iostreams"
)

const (
	// AnnotationHelpGroup places a command under one of the groups of its
	// parent in the help output.
	AnnotationHelpGroup = "help:group"

	// AnnotationHelpHidden omits a command from the help output.
	AnnotationHelpHidden = "help:hidden"
)

var hasFailed bool

// HasFailed signals that the main process should exit with non-zero status
func HasFailed() bool {
	return hasFailed
}

func rootFlagErrorFunc(_ *cobra.Command, err error) error {
	if errors.Is(err, pflag.ErrHelp) {
		return err
	}

	return FlagErrorWrap(err)
}

func rootUsageFunc(cmd *cobra.Command) error {
	out := cmd.OutOrStderr()

	fmt.Fprintf(out, "Usage:  %s\n", cmd.UseLine())

	if rows := commandRows(cmd, visibleCommands(cmd)); len(rows) > 0 {
		fmt.Fprintln(out, "\nAvailable commands:")
		fmt.Fprintln(out, indent(rows, "  "))
		return nil
	}

	if flags := cmd.LocalFlags().FlagUsagesWrapped(80); flags != "" {
		fmt.Fprintln(out, "\nFlags:")
		fmt.Fprintln(out, indent(dedent(flags), "  "))
	}

	return nil
}

// suggest reports an unknown subcommand of cmd together with close matches.
// Cobra only does this for the root command.
func suggest(cmd *cobra.Command, arg string) {
	out := cmd.OutOrStderr()

	fmt.Fprintf(out, "unknown command %q for %q\n", arg, cmd.CommandPath())

	candidates := []string{"--help"}
	if arg != "help" {
		if cmd.SuggestionsMinimumDistance <= 0 {
			cmd.SuggestionsMinimumDistance = 2
		}
		candidates = cmd.SuggestionsFor(arg)
	}

	if len(candidates) > 0 {
		fmt.Fprintln(out, "\nDid you mean this?")
		for _, c := range candidates {
			fmt.Fprintf(out, "\t%s\n", c)
		}
	}

	fmt.Fprintln(out)
	_ = rootUsageFunc(cmd)
}

func hidden(c *cobra.Command) bool {
	_, ok := c.Annotations[AnnotationHelpHidden]
	return ok || c.Hidden || c.Short == ""
}

func visibleCommands(cmd *cobra.Command) []*cobra.Command {
	var cmds []*cobra.Command
	for _, c := range cmd.Commands() {
		if !hidden(c) {
			cmds = append(cmds, c)
		}
	}

	return cmds
}

// commandRows renders the name and short description of each command, with
// the descriptions aligned over all subcommands of parent.
func commandRows(parent *cobra.Command, cmds []*cobra.Command) string {
	width := 0
	for _, c := range visibleCommands(parent) {
		width = max(width, len(c.Name()))
	}

	rows := make([]string, 0, len(cmds))
	for _, c := range cmds {
		rows = append(rows, fmt.Sprintf("%-*s  %s", width, c.Name(), c.Short))
	}

	return strings.Join(rows, "\n")
}

type helpSection struct {
	title string
	body  string
}

func helpSections(cmd *cobra.Command) []helpSection {
	description := cmd.Long
	if description == "" {
		description = cmd.Short
	}

	sections := []helpSection{
		{"", description},
		{"USAGE", cmd.UseLine()},
	}

	if len(cmd.Aliases) > 0 {
		sections = append(sections, helpSection{"ALIASES", strings.Join(cmd.Aliases, ", ")})
	}

	grouped := map[string][]*cobra.Command{}
	var ungrouped []*cobra.Command

	for _, c := range visibleCommands(cmd) {
		group := c.Annotations[AnnotationHelpGroup]
		if group != "" && slices.ContainsFunc(cmd.Groups(), func(g *cobra.Group) bool { return g.ID == group }) {
			grouped[group] = append(grouped[group], c)
		} else {
			ungrouped = append(ungrouped, c)
		}
	}

	if len(ungrouped) > 0 {
		sections = append(sections, helpSection{"SUBCOMMANDS", commandRows(cmd, ungrouped)})
	}

	for _, group := range cmd.Groups() {
		if cmds := grouped[group.ID]; len(cmds) > 0 {
			sections = append(sections, helpSection{group.Title, commandRows(cmd, cmds)})
		}
	}

	if flags := cmd.LocalFlags().FlagUsages(); flags != "" {
		sections = append(sections, helpSection{"FLAGS", dedent(flags)})
	}

	if flags := cmd.InheritedFlags().FlagUsages(); flags != "" {
		sections = append(sections, helpSection{"GLOBAL FLAGS", dedent(flags)})
	}

	if cmd.Example != "" {
		sections = append(sections, helpSection{"EXAMPLES", cmd.Example})
	}

	return sections
}

func writeHelp(w io.Writer, cs *iostreams.ColorScheme, sections []helpSection) {
	for _, s := range sections {
		body := strings.Trim(s.body, "\r\n")
		if body == "" {
			continue
		}

		if s.title != "" {
			fmt.Fprintln(w, cs.Bold(s.title))
			body = indent(body, "  ")
		}

		fmt.Fprintln(w, body)
		fmt.Fprintln(w)
	}
}

func rootHelpFunc(cmd *cobra.Command, args []string) {
	isHelp := func(a string) bool { return a == "--help" || a == "-h" }

	// `kmake image bogus` ends up here with the unknown name as second argument.
	if cmd.HasParent() && !cmd.Parent().HasParent() && cmd.HasSubCommands() &&
		len(args) >= 2 && !slices.ContainsFunc(args, isHelp) {
		suggest(cmd, args[1])
		hasFailed = true
		return
	}

	ios := iostreams.G(cmd.Context())
	writeHelp(ios.Out, ios.ColorScheme(), helpSections(cmd))
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = prefix + l
		}
	}

	return strings.Join(lines, "\n")
}

// dedent removes the indentation common to all non-empty lines.
func dedent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")

	common := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}

		n := len(l) - len(strings.TrimLeft(l, " "))
		if common == -1 || n < common {
			common = n
		}
	}

	if common <= 0 {
		return strings.Join(lines, "\n")
	}

	for i, l := range lines {
		if len(l) >= common {
			lines[i] = l[common:]
		} else {
			lines[i] = strings.TrimLeft(l, " ")
		}
	}

	return strings.Join(lines, "\n")
}
