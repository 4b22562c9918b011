// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.

// Package version holds the build information of kmake, set at link time with
// `-ldflags "-X kmake.sh/internal/version.version=..."`.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	version   = "No version provided"
	commit    = "No commit provided"
	buildTime = "No build timestamp provided"
)

func init() {
	if version != "No version provided" {
		return
	}

	// Fall back to module information for `go install` builds.
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

// Version returns kmake's version string.
func Version() string {
	return version
}

// Commit return kmake's HEAD Git commit SHA.
func Commit() string {
	return commit
}

// BuildTime returns the time in which the package or binary was built.
func BuildTime() string {
	return buildTime
}

// String returns all version information.
func String() string {
	return fmt.Sprintf("%s (%s) %s %s/%s %s\n",
		version,
		commit,
		runtime.Version(),
		runtime.GOOS,
		runtime.GOARCH,
		buildTime,
	)
}
