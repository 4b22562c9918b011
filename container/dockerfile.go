// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package container

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// DockerfileName is the name of the Dockerfile in a build context.
const DockerfileName = "Dockerfile"

//go:embed Dockerfile
var defaultDockerfile []byte

// DefaultDockerfile returns the Dockerfile of the toolchain image.
func DefaultDockerfile() []byte {
	return defaultDockerfile
}

// WriteDefaultContext writes the default Dockerfile into dir so that it can be
// used as a build context.
func WriteDefaultContext(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, DockerfileName), defaultDockerfile, 0o644); err != nil {
		return fmt.Errorf("could not write Dockerfile: %w", err)
	}

	return nil
}

// UserBuildArgs returns the build arguments which create a build user matching
// the given IDs.
func UserBuildArgs(uid, gid int) map[string]*string {
	u := strconv.Itoa(uid)
	g := strconv.Itoa(gid)

	return map[string]*string{
		"UID": &u,
		"GID": &g,
	}
}
