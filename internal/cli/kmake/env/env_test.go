// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package env

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"kmake.sh/cmdfactory"
	"kmake.sh/config"
	"kmake.sh/iostreams"
	"kmake.sh/log"
	"kmake.sh/toolchain"
)

func localContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()

	cfgm, err := config.NewConfigManager()
	require.NoError(t, err)

	cfgm.Config.Runtime = config.RuntimeLocal
	cfgm.Config.Cache.Disabled = true
	cfgm.Config.MakeFlags = ""

	ios, _, out, _ := iostreams.Test()
	logger, _ := test.NewNullLogger()

	ctx := config.WithConfigManager(context.Background(), cfgm)
	ctx = iostreams.WithIOStreams(ctx, ios)
	ctx = log.WithLogger(ctx, logger)

	return ctx, out
}

func TestEnvOutput(t *testing.T) {
	wantEnv := map[string]string{
		"ARCH":          "arm64",
		"CROSS_COMPILE": "aarch64-linux-gnu-",
	}
	wantArgv := []string{"make", "Image", "-j4"}

	tests := []struct {
		name   string
		format format
		decode func(t *testing.T, out []byte) map[string]interface{}
	}{
		{
			name:   "json",
			format: formatJSON,
			decode: func(t *testing.T, out []byte) map[string]interface{} {
				var doc map[string]interface{}
				require.NoError(t, json.Unmarshal(out, &doc))
				return doc
			},
		},
		{
			name:   "yaml",
			format: formatYAML,
			decode: func(t *testing.T, out []byte) map[string]interface{} {
				var doc map[string]interface{}
				require.NoError(t, yaml.Unmarshal(out, &doc))
				return doc
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx, out := localContext(t)

			opts := &EnvOptions{
				Architecture: toolchain.String("arm64"),
				Jobs:         toolchain.Int(4),
				output:       cmdfactory.NewEnumFlag([]format{formatEnv, formatJSON, formatYAML}, tc.format),
			}

			require.NoError(t, opts.Run(ctx, []string{"Image"}))

			doc := tc.decode(t, out.Bytes())
			for _, key := range []string{"arch", "cross_compile", "jobs", "runtime", "cache", "env", "argv", "cmdline"} {
				assert.Contains(t, doc, key)
			}

			assert.Equal(t, "arm64", doc["arch"])
			assert.Equal(t, "aarch64-linux-gnu-", doc["cross_compile"])
			assert.EqualValues(t, 4, doc["jobs"])
			assert.Equal(t, config.RuntimeLocal, doc["runtime"])
			assert.Equal(t, false, doc["cache"])

			env, ok := doc["env"].(map[string]interface{})
			require.True(t, ok)
			assert.Len(t, env, len(wantEnv))
			for k, v := range wantEnv {
				assert.Equal(t, v, env[k])
			}

			argv, ok := doc["argv"].([]interface{})
			require.True(t, ok)
			require.Len(t, argv, len(wantArgv))
			for i, arg := range wantArgv {
				assert.Equal(t, arg, argv[i])
			}

			assert.Equal(t, "ARCH=arm64 CROSS_COMPILE=aarch64-linux-gnu- make Image -j4", doc["cmdline"])
		})
	}
}

func TestEnvOutputDefault(t *testing.T) {
	ctx, out := localContext(t)

	opts := &EnvOptions{
		Architecture: toolchain.String("riscv"),
		CrossCompile: toolchain.String("riscv64-unknown-linux-gnu-"),
		Jobs:         toolchain.Int(2),
	}

	require.NoError(t, opts.Run(ctx, nil))

	assert.Equal(t,
		"ARCH=riscv\n"+
			"CROSS_COMPILE=riscv64-unknown-linux-gnu-\n"+
			"ARCH=riscv CROSS_COMPILE=riscv64-unknown-linux-gnu- make -j2\n",
		out.String(),
	)
}
