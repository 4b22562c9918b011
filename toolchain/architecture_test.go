// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArchitecturePlatform(t *testing.T) {
	assert.Equal(t, "amd64", X86_64.Platform())
	assert.Equal(t, "arm64", ARM64.Platform())
	assert.Equal(t, "arm", ARM.Platform())
	assert.Equal(t, "riscv64", RISCV.Platform())
	assert.Equal(t, "sparc", ParseArchitecture("sparc").Platform())
}

func TestArchitectureFromPlatform(t *testing.T) {
	assert.Equal(t, X86_64, ArchitectureFromPlatform("amd64"))
	assert.Equal(t, RISCV, ArchitectureFromPlatform("riscv64"))
	assert.Equal(t, ARM64, ArchitectureFromPlatform("arm64"))
	assert.Equal(t, KindUnknown, ArchitectureFromPlatform("s390x").Kind())
}

func TestArchitectureNames(t *testing.T) {
	assert.Equal(t, []string{"x86_64", "arm64", "arm", "riscv"}, ArchitectureNames())
}

func TestUnknownArchitecture(t *testing.T) {
	arch := ParseArchitecture("mips")

	assert.Equal(t, KindUnknown, arch.Kind())
	assert.Equal(t, "mips", arch.String())
	assert.Equal(t, "", arch.CrossCompile())
}
