// SPDX-License-Identifier: BSD-3-Clause
// Copyright (c) 2022, Unikraft GmbH and The KraftKit Authors.
// Licensed under the BSD-3-Clause License (the "License").
// You may not use this file except in compliance with the License.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
)

const (
	// EnvConfigFile overrides the location of the configuration file.
	EnvConfigFile = "KMAKE_CONFIG"

	appName = "kmake"
)

// ConfigDir returns the directory holding kmake's configuration file.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// DefaultConfigFile returns the path of the configuration file.
func DefaultConfigFile() string {
	if file := os.Getenv(EnvConfigFile); file != "" {
		if expanded, err := homedir.Expand(file); err == nil {
			return expanded
		}

		return file
	}

	return filepath.Join(ConfigDir(), "config.yaml")
}

// ExpandPath resolves a leading `~` and makes the path absolute.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}

	return filepath.Abs(expanded)
}
