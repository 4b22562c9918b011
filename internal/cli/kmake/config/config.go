// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"context"
	"fmt"
	"io"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kmake.sh/cmdfactory"
	"kmake.sh/config"
	"kmake.sh/iostreams"
	"kmake.sh/log"
)

type ConfigOptions struct{}

func NewCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&ConfigOptions{}, cobra.Command{
		Short: "Show and change the kmake configuration",
		Use:   "config SUBCOMMAND",
		Long: heredoc.Docf(`
			Show and change the kmake configuration.

			The configuration is read from %s, which can be overridden with
			$%s, followed by the KMAKE_* environment variables and the global
			flags.
		`, config.DefaultConfigFile(), config.EnvConfigFile),
		Example: heredoc.Doc(`
			# Build for RISC-V by default
			$ kmake config set default_arch riscv

			# Show the effective configuration
			$ kmake config show
		`),
		Annotations: map[string]string{
			cmdfactory.AnnotationHelpGroup: "misc",
		},
	})
	if err != nil {
		panic(err)
	}

	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newPathCmd())

	return cmd
}

func (opts *ConfigOptions) Run(_ context.Context, _ []string) error {
	return pflag.ErrHelp
}

// manager returns the configuration manager of the context, which reflects the
// file, the environment and the flags.
func manager(ctx context.Context) (*config.ConfigManager, error) {
	if cfgm := config.M(ctx); cfgm != nil {
		return cfgm, nil
	}

	return config.NewConfigManager(config.WithDefaultConfigFile())
}

type ShowOptions struct{}

func newShowCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&ShowOptions{}, cobra.Command{
		Short: "Show the effective configuration",
		Use:   "show",
		Args:  cmdfactory.NoArgsQuoteReminder,
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

// Show writes every configuration key with its effective value.
func Show(w io.Writer, cfgm *config.ConfigManager) error {
	for _, key := range config.Keys() {
		value, err := cfgm.Get(key)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%s=%s\n", key, value)
	}

	return nil
}

func (opts *ShowOptions) Run(ctx context.Context, _ []string) error {
	cfgm, err := manager(ctx)
	if err != nil {
		return err
	}

	return Show(iostreams.G(ctx).Out, cfgm)
}

type GetOptions struct{}

func newGetCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&GetOptions{}, cobra.Command{
		Short: "Print the value of a configuration key",
		Use:   "get KEY",
		Args:  cmdfactory.ExactArgs(1, "expected a configuration key"),
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

func (opts *GetOptions) Run(ctx context.Context, args []string) error {
	cfgm, err := manager(ctx)
	if err != nil {
		return err
	}

	value, err := cfgm.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(iostreams.G(ctx).Out, value)

	return nil
}

type SetOptions struct{}

func newSetCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&SetOptions{}, cobra.Command{
		Short: "Change a configuration key in the configuration file",
		Use:   "set KEY VALUE",
		Args:  cmdfactory.ExactArgs(2, "expected a configuration key and a value"),
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

// Set changes the key in the file and writes it back.  Values from the
// environment and flags are not persisted.
func Set(file, key, value string) error {
	cfgm, err := config.NewConfigManager(config.WithFile(file))
	if err != nil {
		return err
	}

	if err := cfgm.Set(key, value); err != nil {
		return err
	}

	return cfgm.Write(true)
}

func (opts *SetOptions) Run(ctx context.Context, args []string) error {
	file := config.DefaultConfigFile()

	if err := Set(file, args[0], args[1]); err != nil {
		return err
	}

	log.G(ctx).
		WithField("file", file).
		Debugf("set %s=%s", args[0], args[1])

	return nil
}

type PathOptions struct{}

func newPathCmd() *cobra.Command {
	cmd, err := cmdfactory.New(&PathOptions{}, cobra.Command{
		Short: "Print the location of the configuration file",
		Use:   "path",
		Args:  cmdfactory.NoArgsQuoteReminder,
	})
	if err != nil {
		panic(err)
	}

	return cmd
}

func (opts *PathOptions) Run(ctx context.Context, _ []string) error {
	fmt.Fprintln(iostreams.G(ctx).Out, config.DefaultConfigFile())
	return nil
}
