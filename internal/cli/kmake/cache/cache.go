// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package cache

import (
	"context"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kmake.sh/ccache"
	"kmake.sh/cmdfactory"
	"kmake.sh/internal/cli/kmake/utils"
	"kmake.sh/log"
)

type CacheOptions struct{}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&CacheOptions{}, cobra.Command{
		Short: "Manage the compiler cache",
		Use:   "cache SUBCOMMAND",
		Long: heredoc.Doc(`
			Manage the ccache directory shared by all builds of the source tree.  The
			commands run in the same environment as builds so they operate on the
			same cache.
		`),
		Annotations: map[string]string{
			cmdfactory.AnnotationHelpGroup: "cache",
		},
	})
	if err != nil {
		panic(err)
	}

	cmd.AddCommand(newCacheCmd(&StatsOptions{}, "stats", "Show compiler cache statistics"))
	cmd.AddCommand(newCacheCmd(&ClearOptions{}, "clear", "Remove all cached objects"))
	cmd.AddCommand(newCacheCmd(&ZeroOptions{}, "zero", "Reset the compiler cache statistics"))

	return cmd
}

func (opts *CacheOptions) Run(_ context.Context, _ []string) error {
	return pflag.ErrHelp
}

func newCacheCmd(opts cmdfactory.Runnable, use, short string) *cobra.Command {
	cmd, err := cmdfactory.New(opts, cobra.Command{
		Short: short,
		Use:   use,
		Args:  cmdfactory.NoArgsQuoteReminder,
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

type StatsOptions struct{}

func (opts *StatsOptions) Run(ctx context.Context, _ []string) error {
	return Exec(ctx, ccache.StatsArgv())
}

type ClearOptions struct{}

func (opts *ClearOptions) Run(ctx context.Context, _ []string) error {
	if err := Exec(ctx, ccache.ClearArgv()); err != nil {
		return err
	}

	log.G(ctx).Info("compiler cache cleared")

	return nil
}

type ZeroOptions struct{}

func (opts *ZeroOptions) Run(ctx context.Context, _ []string) error {
	return Exec(ctx, ccache.ZeroArgv())
}

// Exec runs ccache with the given arguments where builds run.
func Exec(ctx context.Context, argv []string) error {
	runner, err := utils.NewRunner(ctx)
	if err != nil {
		return err
	}

	defer runner.Close()

	return ExecWith(ctx, runner, argv)
}

// ExecWith is Exec with an explicit runner.
func ExecWith(ctx context.Context, runner utils.Runner, argv []string) error {
	inv, err := utils.CacheInvocation(ctx, runner, argv)
	if err != nil {
		return err
	}

	log.G(ctx).Debug(runner.Cmdline(inv))

	return runner.Run(ctx, inv)
}
