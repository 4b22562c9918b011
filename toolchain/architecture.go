// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package toolchain

import "strings"

// Kind enumerates the architectures for which the toolchain image carries a
// cross-compiler.
type Kind int

const (
	KindUnknown Kind = iota
	KindX86_64
	KindARM64
	KindARM
	KindRISCV
)

// Architecture is the selected target architecture.  Unrecognized names are
// kept verbatim so that they can still be handed to the kernel build system.
type Architecture struct {
	kind Kind
	raw  string
}

type archInfo struct {
	name     string
	prefix   string
	platform string
}

var archInfos = map[Kind]archInfo{
	KindX86_64: {"x86_64", "x86_64-linux-gnu-", "amd64"},
	KindARM64:  {"arm64", "aarch64-linux-gnu-", "arm64"},
	KindARM:    {"arm", "arm-linux-gnueabihf-", "arm"},
	KindRISCV:  {"riscv", "riscv64-linux-gnu-", "riscv64"},
}

var (
	X86_64 = Architecture{kind: KindX86_64}
	ARM64  = Architecture{kind: KindARM64}
	ARM    = Architecture{kind: KindARM}
	RISCV  = Architecture{kind: KindRISCV}
)

// ParseArchitecture normalizes the provided name.  Matching is exact; any name
// which is not a known alias yields an architecture of KindUnknown carrying
// the literal name.
func ParseArchitecture(name string) Architecture {
	switch name {
	case "x86_64", "x86", "i386":
		return X86_64
	case "arm64", "aarch64":
		return ARM64
	case "arm":
		return ARM
	case "riscv":
		return RISCV
	default:
		return Architecture{kind: KindUnknown, raw: name}
	}
}

// Architectures returns all architectures which have a cross-compiler.
func Architectures() []Architecture {
	return []Architecture{X86_64, ARM64, ARM, RISCV}
}

// ArchitectureNames returns the canonical names of all known architectures.
func ArchitectureNames() []string {
	archs := Architectures()
	names := make([]string, len(archs))
	for i, arch := range archs {
		names[i] = arch.String()
	}

	return names
}

// Kind returns the enumerated variant of the architecture.
func (a Architecture) Kind() Kind {
	return a.kind
}

// IsKnown returns true if the architecture has a cross-compiler.
func (a Architecture) IsKnown() bool {
	return a.kind != KindUnknown
}

// String returns the canonical name, which is also the value of the kernel's
// ARCH variable.
func (a Architecture) String() string {
	if info, ok := archInfos[a.kind]; ok {
		return info.name
	}

	return a.raw
}

// CrossCompile returns the toolchain prefix for the architecture or an empty
// string if there is none.
func (a Architecture) CrossCompile() string {
	return archInfos[a.kind].prefix
}

// Platform returns the OCI architecture name, e.g. "amd64" for x86_64.
func (a Architecture) Platform() string {
	if info, ok := archInfos[a.kind]; ok {
		return info.platform
	}

	return strings.ToLower(a.raw)
}

// ArchitectureFromPlatform returns the architecture for an OCI architecture
// name such as the one reported by the host platform.
func ArchitectureFromPlatform(platform string) Architecture {
	for _, arch := range Architectures() {
		if arch.Platform() == platform {
			return arch
		}
	}

	return ParseArchitecture(platform)
}
