// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package log

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Levels returns a map of log level string names to their constant equivalent.
func Levels() map[string]logrus.Level {
	return map[string]logrus.Level{
		"panic":   logrus.PanicLevel,
		"fatal":   logrus.FatalLevel,
		"error":   logrus.ErrorLevel,
		"warning": logrus.WarnLevel,
		"warn":    logrus.WarnLevel,
		"info":    logrus.InfoLevel,
		"debug":   logrus.DebugLevel,
		"trace":   logrus.TraceLevel,
	}
}

// LevelNames returns the sorted names accepted by ParseLevel.
func LevelNames() []string {
	names := make([]string, 0, len(Levels()))
	for name := range Levels() {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// ParseLevel returns the level with the given name, falling back to
// logrus.InfoLevel.
func ParseLevel(name string) logrus.Level {
	if level, ok := Levels()[strings.ToLower(name)]; ok {
		return level
	}

	return logrus.InfoLevel
}
