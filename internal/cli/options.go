// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"kmake.sh/config"
	"kmake.sh/iostreams"
	"kmake.sh/log"
)

type CliOptions struct {
	IOStreams     *iostreams.IOStreams
	Logger        *logrus.Logger
	ConfigManager *config.ConfigManager
}

type CliOption func(*CliOptions) error

// NewLogger returns a logger configured from the `log` section of the
// configuration and writing to the error stream.
func NewLogger(ios *iostreams.IOStreams, cfg *config.KMake) *logrus.Logger {
	return log.New(ios.ErrOut, log.Options{
		Type:       log.LoggerTypeFromString(cfg.Log.Type),
		Level:      cfg.Log.Level,
		Timestamps: cfg.Log.Timestamps,
	})
}

// WithDefaultLogger sets up the built in logger based on provided config found
// from the ConfigManager.
func WithDefaultLogger() CliOption {
	return func(copts *CliOptions) error {
		if copts.Logger != nil {
			return nil
		}

		if copts.ConfigManager == nil || copts.IOStreams == nil {
			copts.Logger = log.L
			return nil
		}

		copts.Logger = NewLogger(copts.IOStreams, copts.ConfigManager.Config)

		return nil
	}
}

// WithLogger sets a previously instantiated logger.
func WithLogger(logger *logrus.Logger) CliOption {
	return func(copts *CliOptions) error {
		copts.Logger = logger
		return nil
	}
}

// WithConfigManager sets a previously instantiate ConfigManager to be used as
// part of the CLI options.
func WithConfigManager(cfgm *config.ConfigManager) CliOption {
	return func(copts *CliOptions) error {
		copts.ConfigManager = cfgm
		return nil
	}
}

// WithDefaultConfigManager instantiates a configuration manager from the
// default configuration file and the environment.
func WithDefaultConfigManager() CliOption {
	return func(copts *CliOptions) error {
		if copts.ConfigManager != nil {
			return nil
		}

		cfgm, err := config.NewConfigManager(
			config.WithDefaultConfigFile(),
		)
		if cfgm == nil {
			return fmt.Errorf("could not initialize configuration: %w", err)
		}

		copts.ConfigManager = cfgm

		// The manager still carries the defaults.
		if err != nil {
			log.L.Warnf("could not read configuration: %v", err)
		}

		return nil
	}
}

// WithIOStreams sets a previously instantiated iostreams.IOStreams structure to
// be used within the command.
func WithIOStreams(io *iostreams.IOStreams) CliOption {
	return func(copts *CliOptions) error {
		copts.IOStreams = io
		return nil
	}
}

// WithDefaultIOStreams uses the standard streams of the process.
func WithDefaultIOStreams() CliOption {
	return func(copts *CliOptions) error {
		if copts.IOStreams != nil {
			return nil
		}

		io := iostreams.System()

		if copts.ConfigManager != nil && copts.ConfigManager.Config.NoPrompt {
			io.SetNeverPrompt(true)
		}

		copts.IOStreams = io

		return nil
	}
}

// NewCliOptions applies the options in order.
func NewCliOptions(opts ...CliOption) (*CliOptions, error) {
	copts := &CliOptions{}

	for _, o := range opts {
		if err := o(copts); err != nil {
			return nil, err
		}
	}

	return copts, nil
}

// WithContext returns a context carrying the configuration manager, the
// logger and the streams.
func (copts *CliOptions) WithContext(ctx context.Context) context.Context {
	if copts.ConfigManager != nil {
		ctx = config.WithConfigManager(ctx, copts.ConfigManager)
	}

	if copts.Logger != nil {
		ctx = log.WithLogger(ctx, copts.Logger)
	}

	if copts.IOStreams != nil {
		ctx = iostreams.WithIOStreams(ctx, copts.IOStreams)
	}

	return ctx
}
