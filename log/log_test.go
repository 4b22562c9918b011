// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	assert.Equal(t, L, G(context.Background()))

	logger := logrus.New()
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, G(ctx))
}

func TestLoggerTypeFromString(t *testing.T) {
	for _, name := range LoggerTypeNames() {
		assert.Equal(t, name, LoggerTypeFromString(name).String())
	}

	assert.Equal(t, FANCY, LoggerTypeFromString("FANCY"))
	assert.Equal(t, BASIC, LoggerTypeFromString("unknown"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, logrus.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("nope"))
}

func TestNewBasic(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Type: BASIC, Level: "debug"})

	logger.WithField("arch", "sparc").Warn("unrecognized architecture")

	assert.Equal(t, "level=warning msg=\"unrecognized architecture\" arch=sparc\n", buf.String())
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Type: JSON, Level: "info"})

	logger.WithField("jobs", 8).Info("building")
	logger.Debug("hidden")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "building", entry["msg"])
	assert.Equal(t, float64(8), entry["jobs"])
	assert.NotContains(t, entry, "time")
}

func TestNewQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Type: QUIET, Level: "info"})

	logger.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestTextFormatterClashingFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{Type: BASIC, Level: "info"})

	logger.WithField("msg", "x").Info("hello")

	assert.Equal(t, "level=info msg=hello fields.msg=x\n", buf.String())
}

func TestTextFormatterBadgeWithoutColors(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&TextFormatter{
		ForceFormatting:  true,
		DisableColors:    true,
		DisableTimestamp: true,
	})

	logger.WithField("jobs", 4).WithField("arch", "arm64").Warn("building")

	assert.Equal(t, " W  building arch=arm64 jobs=4\n", buf.String())
	assert.NotContains(t, buf.String(), "\x1b[")
}
