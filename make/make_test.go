// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package make

import (
	"bytes"
	"context"
	"os"
	osexec "os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kmake.sh/exec"
	"kmake.sh/internal/errs"
)

func TestArgv(t *testing.T) {
	tests := []struct {
		name  string
		mopts []MakeOption
		want  []string
	}{
		{
			name: "bare",
			want: []string{"make"},
		},
		{
			name: "vars sorted before targets",
			mopts: []MakeOption{
				WithVars(map[string]string{"CROSS_COMPILE": "aarch64-linux-gnu-", "ARCH": "arm64"}),
				WithTarget("defconfig", "-j8"),
			},
			want: []string{"make", "ARCH=arm64", "CROSS_COMPILE=aarch64-linux-gnu-", "defconfig", "-j8"},
		},
		{
			name:  "passthrough arguments keep their order",
			mopts: []MakeOption{WithTarget("-k"), WithTarget("V=1", "Image")},
			want:  []string{"make", "-k", "V=1", "Image"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.mopts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Argv())
		})
	}
}

func TestInvalidOptions(t *testing.T) {
	_, err := New(WithVar("A B", "x"))
	assert.Error(t, err)

	_, err = New(WithVar("", "x"))
	assert.Error(t, err)
}

func TestExecute(t *testing.T) {
	if _, err := osexec.LookPath(DefaultBinaryName); err != nil {
		t.Skip("make is not installed")
	}

	dir := t.TempDir()
	makefile := filepath.Join(dir, "Makefile")
	require.NoError(t, os.WriteFile(makefile, []byte("all:\n\t@echo $(ARCH)\nfail:\n\t@exit 2\n"), 0o644))

	// A surrounding make would enable -w through MAKEFLAGS or MAKELEVEL.
	noMakeflags := exec.WithEnvMap(map[string]string{"MAKEFLAGS": "", "MAKELEVEL": ""})

	var out bytes.Buffer

	m, err := New(
		WithVar("ARCH", "riscv"),
		WithTarget("all"),
		WithExecOptions(exec.WithStdout(&out)),
	)
	require.NoError(t, err)
	require.NoError(t, m.Execute(context.Background(), exec.WithDir(dir), noMakeflags))
	assert.Equal(t, "riscv\n", out.String())

	m, err = New(
		WithTarget("fail"),
		WithExecOptions(exec.WithStdout(&bytes.Buffer{})),
	)
	require.NoError(t, err)

	err = m.Execute(context.Background(), exec.WithDir(dir), noMakeflags)
	assert.Equal(t, 2, errs.ExitCode(err))
}

func TestExecuteEnvironment(t *testing.T) {
	if _, err := osexec.LookPath(DefaultBinaryName); err != nil {
		t.Skip("make is not installed")
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Makefile"), []byte("all:\n\t@echo $(CROSS_COMPILE)\n"), 0o644))

	var out bytes.Buffer

	m, err := New(WithTarget("all"))
	require.NoError(t, err)

	require.NoError(t, m.Execute(context.Background(),
		exec.WithDir(dir),
		exec.WithEnvMap(map[string]string{"CROSS_COMPILE": "aarch64-linux-gnu-", "MAKEFLAGS": "", "MAKELEVEL": ""}),
		exec.WithStdout(&out),
	))
	assert.Equal(t, "aarch64-linux-gnu-\n", out.String())
}
