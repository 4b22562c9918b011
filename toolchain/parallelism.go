// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package toolchain

import (
	"runtime"

	"github.com/klauspost/cpuid"
)

// MinimumParallelism is used when the host's processing unit count cannot be
// determined.
const MinimumParallelism = 4

// parallelismSources are consulted in order by HostParallelism.  The CPU
// affinity of the process comes first, the processor topology second.
var parallelismSources = []func() int{
	runtime.NumCPU,
	func() int { return cpuid.CPU.LogicalCores },
}

// HostParallelism returns the number of processing units available to this
// process.
func HostParallelism() int {
	return parallelismFrom(parallelismSources...)
}

// parallelismFrom returns the first positive count of the sources, or
// MinimumParallelism when none yields one.
func parallelismFrom(sources ...func() int) int {
	for _, source := range sources {
		if n := source(); n > 0 {
			return n
		}
	}

	return MinimumParallelism
}

// HostInfo describes the processor of the host.
type HostInfo struct {
	Brand         string
	PhysicalCores int
	LogicalCores  int
	Architecture  Architecture
}

// Host returns information about the host processor.
func Host() HostInfo {
	brand := cpuid.CPU.BrandName
	if brand == "" {
		brand = runtime.GOARCH
	}

	return HostInfo{
		Brand:         brand,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  HostParallelism(),
		Architecture:  ArchitectureFromPlatform(runtime.GOARCH),
	}
}
