// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Options configure a logger created by New.
type Options struct {
	Type       LoggerType
	Level      string
	Timestamps bool
}

// New returns a logger writing to out and configured according to opts.
func New(out io.Writer, opts Options) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(ParseLevel(opts.Level))

	switch opts.Type {
	case QUIET:
		logger.Formatter = new(logrus.TextFormatter)
		if logger.Level > logrus.ErrorLevel {
			logger.SetLevel(logrus.ErrorLevel)
		}

	case BASIC:
		formatter := new(TextFormatter)
		formatter.FullTimestamp = true
		formatter.DisableTimestamp = !opts.Timestamps
		formatter.DisableColors = true
		logger.Formatter = formatter

	case FANCY:
		formatter := new(TextFormatter)
		formatter.FullTimestamp = true
		formatter.DisableTimestamp = !opts.Timestamps
		logger.Formatter = formatter

	case JSON:
		formatter := new(logrus.JSONFormatter)
		formatter.DisableTimestamp = !opts.Timestamps
		logger.Formatter = formatter
	}

	return logger
}
